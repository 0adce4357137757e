package models

// All returns every persisted model, for auto-migration of SQLite databases.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&AssetRecord{},
		&BalanceRecord{},
		&TransactionRecord{},
		&AuditLog{},
	}
}
