package domain

import "time"

// ProductStatus статус модерации товара
type ProductStatus string

const (
	StatusPending         ProductStatus = "pending"
	StatusApproved        ProductStatus = "approved"
	StatusRejected        ProductStatus = "rejected"
	StatusPendingTakedown ProductStatus = "pending_takedown"
	StatusTakenDown       ProductStatus = "taken_down"
)

// Statuses все статусы товара в порядке отображения
var Statuses = []ProductStatus{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusPendingTakedown,
	StatusTakenDown,
}

func (s ProductStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Role роль вызывающего; прочие роли отклоняются на входе
type Role string

const (
	RoleVendor    Role = "vendor"
	RoleAdmin     Role = "admin"
	RoleAffiliate Role = "affiliate"
)

func (r Role) Valid() bool {
	switch r {
	case RoleVendor, RoleAdmin, RoleAffiliate:
		return true
	}
	return false
}

// Actor аутентифицированный вызывающий, передаётся явно в каждую операцию
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

const (
	MinCommission     = 1
	MaxCommission     = 50
	DefaultCommission = 10
)

// Categories допустимые категории новых товаров
var Categories = []string{
	"Electronics",
	"Fashion",
	"Home & Garden",
	"Beauty",
	"Sports",
	"Books",
	"Toys",
	"Food & Beverages",
	"Health",
	"Other",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Product принадлежит создавшему его продавцу. Цена в минимальных единицах валюты
type Product struct {
	ID          string        `json:"id" db:"id"`
	VendorID    string        `json:"vendor_id" db:"vendor_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Price       int64         `json:"price" db:"price"`
	Commission  int           `json:"commission" db:"commission"`
	Category    string        `json:"category" db:"category"`
	Images      []string      `json:"images" db:"-"`
	Sales       int64         `json:"sales" db:"sales"`
	Status      ProductStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// PrimaryImage первое изображение или ""
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// VendorStats сводка по товарам продавца
type VendorStats struct {
	Revenue        int64 `json:"revenue"`
	Sales          int64 `json:"sales"`
	ActiveProducts int   `json:"active_products"`
	Pending        int   `json:"pending"`
}

// NotificationType тип уведомления
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification сообщение для конкретного пользователя
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	Read      bool             `json:"read" db:"read"`
	Link      *string          `json:"link" db:"link"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// ChangeType вид изменения строки в ленте уведомлений
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// NotificationChange одно событие ленты пользователя
type NotificationChange struct {
	Type         ChangeType   `json:"event_type"`
	Notification Notification `json:"notification"`
}
