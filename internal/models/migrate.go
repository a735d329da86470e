package models

// All lists every model for AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Theme{},
		&EventPlan{},
		&AddonCatalog{},
		&Event{},
		&Purchase{},
		&EventAddonPurchase{},
		&GuestSession{},
		&FileMetadata{},
		&EventGalleryOrder{},
		&WebhookEvent{},
		&AuditLog{},
		&AppErrorLog{},
		&LoginAttempt{},
	}
}
