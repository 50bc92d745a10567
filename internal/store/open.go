package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/chronos-goals/internal/config"
)

// Open builds the store selected by STORE_BACKEND and migrates its schema.
func Open(ctx context.Context, s *config.Settings) (Store, error) {
	log := config.WithContext(ctx).WithField("backend", s.StoreBackend)

	var st Store
	switch s.StoreBackend {
	case config.BackendPostgres:
		db, err := config.Connect(ctx, s.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		st = NewGorm(db)
	case config.BackendSQLite:
		sq, err := NewSQLite(s.SQLitePath)
		if err != nil {
			return nil, err
		}
		st = sq
		log = log.WithFields(logrus.Fields{"path": s.SQLitePath})
	default:
		return nil, fmt.Errorf("store: unknown backend %q", s.StoreBackend)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		log.WithError(err).Error("Schema migration failed")
		return nil, err
	}
	log.Info("Store ready")
	return st, nil
}
