package services

import (
	"fmt"
	"log"

	"expense-insight/internal/core/domain"
)

// persistenceError logs the storage failure in full and returns an
// opaque error that only names the failed operation.
func persistenceError(op string, err error) error {
	log.Printf("❌ %s failed: %v", op, err)
	return fmt.Errorf("%w: %s", domain.ErrPersistenceFailed, op)
}
