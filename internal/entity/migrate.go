package entity

import (
	"context"

	"github.com/drawlab/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Draw{},
		&DrawExecution{},
		&CreditLedgerEntry{},
		&BlacklistEntry{},
	)
}
