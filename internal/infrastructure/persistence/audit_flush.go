package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/warehousepro/backend/internal/domain/ledger"
	"github.com/warehousepro/backend/internal/domain/shared"
	"github.com/warehousepro/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// flushAuditTrail turns every recorded change into one audit_logs row inside
// the transaction that made the change. Inventory changes are enriched with
// the product and warehouse names so the trail reads without joins; a failed
// enrichment lookup degrades the record, never the commit.
func flushAuditTrail(ctx context.Context, tx *gorm.DB, changes *ledger.ChangeSet, log *zap.Logger) error {
	if changes.Len() == 0 {
		return nil
	}

	userID := logger.GetUserID(ctx)
	if userID == "" {
		userID = "system"
	}

	inventoryTable := ledger.Inventory{}.TableName()
	logs := make([]ledger.AuditLog, 0, changes.Len())
	for _, ch := range changes.Changes() {
		if ch.Table == inventoryTable {
			enrichInventoryChange(ctx, tx, &ch, log)
		}

		entry := ledger.AuditLog{
			BaseEntity: shared.NewBaseEntity(),
			UserID:     userID,
			Action:     ch.Action,
			TableName_: ch.Table,
			RecordID:   changeRecordID(ch),
		}
		if ch.Old != nil {
			old, err := marshalValues(ch.Old)
			if err != nil {
				return err
			}
			entry.OldValues = &old
		}
		if ch.New != nil {
			updated, err := marshalValues(ch.New)
			if err != nil {
				return err
			}
			entry.NewValues = &updated
		}
		if ch.Table == inventoryTable && ch.Action == ledger.AuditActionDelete {
			entry.IsSuspicious = true
			note := "inventory row removed; verify the physical count"
			entry.RiskNote = &note
		}
		logs = append(logs, entry)
	}

	return tx.Create(&logs).Error
}

// enrichInventoryChange resolves the product and warehouse names referenced
// by an inventory snapshot and adds them to the recorded values. Lookups are
// best-effort: a missing reference leaves the snapshot as recorded.
func enrichInventoryChange(ctx context.Context, tx *gorm.DB, ch *ledger.AuditableChange, log *zap.Logger) {
	for _, values := range []map[string]interface{}{ch.Old, ch.New} {
		if values == nil {
			continue
		}
		if productID, ok := stringValue(values, "ProductID"); ok {
			var name string
			err := tx.WithContext(ctx).Table("products").
				Select("name").Where("id = ?", productID).Scan(&name).Error
			if err != nil || name == "" {
				log.Warn("audit enrichment: product name lookup failed",
					zap.String("product_id", productID), zap.Error(err))
			} else {
				values["ProductName"] = name
			}
		}
		if locationID, ok := stringValue(values, "LocationID"); ok {
			var name string
			err := tx.WithContext(ctx).Table("locations").
				Select("warehouses.name").
				Joins("JOIN warehouses ON warehouses.id = locations.warehouse_id").
				Where("locations.id = ?", locationID).Scan(&name).Error
			if err != nil || name == "" {
				log.Warn("audit enrichment: warehouse name lookup failed",
					zap.String("location_id", locationID), zap.Error(err))
			} else {
				values["WarehouseName"] = name
			}
		}
	}
}

func stringValue(values map[string]interface{}, key string) (string, bool) {
	v, ok := values[key].(string)
	if !ok || v == "" {
		return "", false
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", false
	}
	return v, true
}

func changeRecordID(ch ledger.AuditableChange) string {
	if id, ok := ch.Key["ID"].(string); ok {
		return id
	}
	return fmt.Sprintf("%v", ch.Key)
}

func marshalValues(values map[string]interface{}) (string, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to serialize audit values: %w", err)
	}
	return string(b), nil
}
