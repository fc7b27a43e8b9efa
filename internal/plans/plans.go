// Package plans содержит статическую таблицу премиум-планов: идентификатор
// плана, отображаемое имя, цена в минорных единицах валюты, длительность
// в месяцах и описание. Таблица зашита в код и одинакова для клиента и
// для проверки платежей.
package plans

import (
	"fmt"
	"time"
)

// Plan описывает премиум-план подписки.
type Plan struct {
	Type           string `json:"plan_type"`
	Name           string `json:"name"`
	Price          int64  `json:"price"` // Минорные единицы валюты
	DurationMonths int    `json:"duration_months"`
	Description    string `json:"description"`
}

// Месяц подписки считается как фиксированные 30 дней, без привязки к календарю.
const monthDuration = 30 * 24 * time.Hour

var table = map[string]Plan{
	"1_month": {
		Type:           "1_month",
		Name:           "Premium - 1 Month",
		Price:          69900,
		DurationMonths: 1,
		Description:    "Premium features for 1 month",
	},
	"3_month": {
		Type:           "3_month",
		Name:           "Premium - 3 Months",
		Price:          149900,
		DurationMonths: 3,
		Description:    "Premium features for 3 months",
	},
	"6_month": {
		Type:           "6_month",
		Name:           "Premium - 6 Months",
		Price:          249900,
		DurationMonths: 6,
		Description:    "Premium features for 6 months",
	},
}

// Get возвращает план по идентификатору или ошибку, если план неизвестен.
func Get(planType string) (Plan, error) {
	p, ok := table[planType]
	if !ok {
		return Plan{}, fmt.Errorf("unknown subscription plan: %s", planType)
	}
	return p, nil
}

// List возвращает все планы в фиксированном порядке.
func List() []Plan {
	return []Plan{table["1_month"], table["3_month"], table["6_month"]}
}

// Extend возвращает конец оплаченного окна: base плюс длительность плана.
func (p Plan) Extend(base time.Time) time.Time {
	return base.Add(time.Duration(p.DurationMonths) * monthDuration)
}
