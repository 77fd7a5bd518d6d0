package results

import (
	"context"
	"fmt"
	"strings"
)

// Open selects a repository by driver name: postgres, sqlite or memory.
func Open(ctx context.Context, driver, databaseURL string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	case "sqlite":
		return NewSQLite(ctx, databaseURL)
	}
	return nil, fmt.Errorf("unknown results driver %q", driver)
}
