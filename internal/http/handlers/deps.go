package handlers

import (
	"chidi/internal/config"
	"chidi/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler         *AuthHandler
	ProductHandler      *ProductHandler
	CustomerHandler     *CustomerHandler
	OrderHandler        *OrderHandler
	NotificationHandler *NotificationHandler
	DashboardHandler    *DashboardHandler
}

func NewDeps(shop *services.ShopService, auth *services.AuthService, cfg config.Config) *Deps {
	return &Deps{
		Auth:                auth,
		AuthHandler:         &AuthHandler{Auth: auth, WebhookSecret: cfg.WebhookSecret},
		ProductHandler:      &ProductHandler{Shop: shop},
		CustomerHandler:     &CustomerHandler{Shop: shop},
		OrderHandler:        &OrderHandler{Shop: shop},
		NotificationHandler: &NotificationHandler{Shop: shop},
		DashboardHandler:    &DashboardHandler{Shop: shop},
	}
}
