package store

import "context"

func (q *Queries) InsertAdminAction(ctx context.Context, a AdminAction) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	details, err := jsonParam(a.Details)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `
INSERT INTO admin_action_logs (id, admin_id, action, entity_kind, entity_id, details)
VALUES ($1, $2, $3, $4, $5, $6)`, a.ID, a.AdminID, a.Action, a.EntityKind, a.EntityID, details)
	return err
}

func (q *Queries) ListAdminActions(ctx context.Context, entityKind, entityID string, limit, offset int) ([]AdminAction, error) {
	rows, err := q.db.Query(ctx, `
SELECT id, admin_id, action, entity_kind, entity_id, details, created_at FROM admin_action_logs
WHERE ($1::text = '' OR entity_kind = $1)
  AND ($2::text = '' OR entity_id = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4`, entityKind, entityID, clampLimit(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AdminAction{}
	for rows.Next() {
		var a AdminAction
		var details []byte
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Action, &a.EntityKind, &a.EntityID, &details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if a.Details, err = jsonVal(details); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
