// Package models содержит доменные структуры платформы знакомств,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Profile представляет анкету пользователя.
// Идентификатор анкеты совпадает с uid пользователя из таблицы users.
type Profile struct {
	ID           string     // Уникальный идентификатор (uid пользователя)
	Name         string     // Отображаемое имя
	Age          int        // Возраст, не меньше 18
	Gender       string     // Пол
	Description  string     // Текст "о себе"
	Hobbies      []string   // Интересы
	ImageURLs    []string   // Ссылки на фотографии
	Location     string     // Город или регион
	IsActive     bool       // Анкета видна в поиске
	IsPremium    bool       // Признак активной премиум-подписки
	PremiumUntil *time.Time // Дата окончания премиума, nil если премиума нет
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Complete сообщает, заполнена ли анкета до минимума, допускающего показ в поиске:
// имя, возраст от 18 лет, хотя бы одна фотография и хотя бы один интерес.
func (p *Profile) Complete() bool {
	return p.Name != "" && p.Age >= 18 && len(p.ImageURLs) >= 1 && len(p.Hobbies) >= 1
}

// ProfilePatch частичное обновление анкеты: nil-поле не трогает сохранённое значение.
// Каждый шаг мастера заполнения анкеты отправляет собственный набор полей.
type ProfilePatch struct {
	Name        *string
	Age         *int
	Gender      *string
	Description *string
	Hobbies     []string
	ImageURLs   []string
	Location    *string
}

// Шаги мастера заполнения анкеты, проходятся линейно.
const (
	StepGender    = "gender"
	StepBasic     = "basic"
	StepPhotos    = "photos"
	StepBio       = "bio"
	StepInterests = "interests"
	StepLocation  = "location"
)

// DummyStep используется для приёма данных одного шага мастера из JSON-запроса.
// Какие поля обязательны, зависит от шага и проверяется в бизнес-логике.
type DummyStep struct {
	Name        string   `json:"name,omitempty"`
	Age         int      `json:"age,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Description string   `json:"description,omitempty"`
	Hobbies     []string `json:"hobbies,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	Location    string   `json:"location,omitempty"`
}
