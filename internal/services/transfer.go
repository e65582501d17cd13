package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"pagos/internal/core"
)

// importSchema constrains restore payloads before anything touches the
// store. Amounts are integer cents, dates are calendar days, methods are
// the closed display set.
const importSchema = `{
  "type": "object",
  "required": ["debts"],
  "properties": {
    "debts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "total"],
        "properties": {
          "name": {"type": "string", "minLength": 1, "maxLength": 200},
          "total": {"type": "integer", "minimum": 0},
          "payments": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "amount", "date", "method"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "amount": {"type": "integer", "minimum": 0},
                "date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
                "method": {"type": "string", "enum": ["cash", "wallet", "other"]}
              }
            }
          }
        }
      }
    }
  }
}`

// exportEnvelope is the wire shape of a backup.
type exportEnvelope struct {
	Debts []core.Debt `json:"debts"`
}

// Export dumps the full collection as JSON.
func (s *DebtService) Export(ctx context.Context) ([]byte, error) {
	debts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list debts for export: %w", err)
	}
	out, err := json.MarshalIndent(exportEnvelope{Debts: debts}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return out, nil
}

// Import validates the payload against the schema and inserts every debt
// with a freshly assigned id. Returns the number of debts imported. Import
// does not touch existing records.
func (s *DebtService) Import(ctx context.Context, payload []byte) (int, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("validate import payload: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return 0, fmt.Errorf("invalid import payload: %s", errs[0].String())
		}
		return 0, fmt.Errorf("invalid import payload")
	}

	var env exportEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return 0, fmt.Errorf("decode import payload: %w", err)
	}

	for i, d := range env.Debts {
		created, err := s.store.Create(ctx, d.Name, d.Total.Cents)
		if err != nil {
			return i, fmt.Errorf("import debt %q: %w", d.Name, err)
		}
		if len(d.Payments) > 0 {
			if err := s.store.SetPayments(ctx, created.ID, d.Payments); err != nil {
				return i, fmt.Errorf("import payments for %q: %w", d.Name, err)
			}
		}
	}
	return len(env.Debts), nil
}
