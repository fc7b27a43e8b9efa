package models

import "time"

// Статусы жалобы в очереди модерации.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
	ReportStatusBanned    = "banned"
)

// Действия администратора над жалобой.
const (
	ModerationActionApprove = "approve"
	ModerationActionRemove  = "remove"
	ModerationActionBan     = "ban"
	ModerationActionDismiss = "dismiss"
)

// Report представляет жалобу пользователя или автоматическую отметку контента.
type Report struct {
	ID              int
	ReporterID      string     // Кто пожаловался, пусто для автоматических отметок
	ReportedUserID  string     // На кого жалоба
	ContentType     string     // profile | photo | message | story
	Reason          string     // Причина жалобы
	Description     string     // Пояснение
	Status          string     // pending | resolved | dismissed | banned
	AutoFlagged     bool       // Жалоба создана автоматикой
	Priority        string     // low | medium | high | critical
	CreatedAt       time.Time
	ReviewedAt      *time.Time // Момент решения, nil пока жалоба pending
	ResolutionNotes string     // Комментарий администратора
}

// ModerationAction запись аудита о действии администратора над жалобой.
type ModerationAction struct {
	ID           int
	ReportID     int
	AdminID      string
	ActionType   string // approve | remove | ban | dismiss
	TargetUserID string
	Reason       string
	CreatedAt    time.Time
}

// Типы бана.
const (
	BanTypePermanent = "permanent"
	BanTypeTemporary = "temporary"
)

// BannedUser запись о бане пользователя. Разбан не удаляет строку,
// а снимает флаг активности.
type BannedUser struct {
	ID          int
	UserID      string
	BannedBy    string     // uid администратора
	BanType     string     // permanent | temporary
	Reason      string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	LiftedAt    *time.Time // Момент разбана, nil пока бан активен
}

// ModerationStats сводка по очереди модерации для панели администратора.
type ModerationStats struct {
	PendingReports int `json:"pending_reports"`
	AutoFlagged    int `json:"auto_flagged"`
	ResolvedToday  int `json:"resolved_today"`
	BannedUsers    int `json:"banned_users"`
}

// DummyReport используется для приёма жалобы из JSON-запроса.
type DummyReport struct {
	ReportedUserID string `json:"reported_user_id" validate:"required,uuid"`
	ContentType    string `json:"content_type" validate:"required,oneof=profile photo message story"`
	Reason         string `json:"reason" validate:"required"`
	Description    string `json:"description,omitempty"`
}

// DummyModerationAction используется для приёма действия администратора из JSON.
type DummyModerationAction struct {
	Action string `json:"action" validate:"required,oneof=approve remove ban dismiss"`
	Notes  string `json:"notes,omitempty"`
}
