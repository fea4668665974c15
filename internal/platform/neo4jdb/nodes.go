package neo4jdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Absent optional fields are written as null, which Neo4j stores as a
// missing property.

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func taskProps(t *domain.Task) map[string]any {
	return map[string]any{
		"id":          t.ID.String(),
		"title":       t.Title,
		"description": t.Description,
		"priority":    nullableString(string(t.Priority)),
		"status":      nullableString(string(t.Status)),
		"due_date":    nullableTime(t.DueDate),
		"created_by":  t.CreatedBy.String(),
		"assigned_to": nullableUUID(t.AssignedTo),
		"notified":    t.Notified,
		"created_at":  t.CreatedAt.UTC(),
		"updated_at":  t.UpdatedAt.UTC(),
	}
}

func userProps(u *domain.User) map[string]any {
	return map[string]any{
		"id":               u.ID.String(),
		"email":            u.Email,
		"name":             u.Name,
		"telegram_chat_id": nullableInt64(u.TelegramChatID),
		"created_at":       u.CreatedAt.UTC(),
		"updated_at":       u.UpdatedAt.UTC(),
	}
}

func notificationProps(n *domain.Notification) map[string]any {
	return map[string]any{
		"id":         n.ID.String(),
		"user_id":    n.UserID.String(),
		"task_id":    n.TaskID.String(),
		"message":    n.Message,
		"read":       n.Read,
		"created_at": n.CreatedAt.UTC(),
	}
}

// props reads typed values out of a node's property map.
type props map[string]any

func (p props) str(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %s: expected string, got %T", key, v)
	}
	return s, nil
}

func (p props) flag(key string) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("property %s: expected bool, got %T", key, v)
	}
	return b, nil
}

func (p props) datetime(key string) (*time.Time, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("property %s: expected datetime, got %T", key, v)
	}
	return &t, nil
}

func (p props) integer(key string) (*int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	i, ok := v.(int64)
	if !ok {
		return nil, fmt.Errorf("property %s: expected integer, got %T", key, v)
	}
	return &i, nil
}

func (p props) id(key string) (*uuid.UUID, error) {
	s, err := p.str(key)
	if err != nil || s == "" {
		return nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", key, err)
	}
	return &id, nil
}

func (p props) requiredID(key string) (uuid.UUID, error) {
	id, err := p.id(key)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fmt.Errorf("property %s: missing", key)
	}
	return *id, nil
}

func (p props) requiredDatetime(key string) (time.Time, error) {
	t, err := p.datetime(key)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("property %s: missing", key)
	}
	return *t, nil
}

// decoder collects the first error across a sequence of reads.
type decoder struct {
	p   props
	err error
}

func (d *decoder) str(key string) string {
	if d.err != nil {
		return ""
	}
	var s string
	s, d.err = d.p.str(key)
	return s
}

func (d *decoder) flag(key string) bool {
	if d.err != nil {
		return false
	}
	var b bool
	b, d.err = d.p.flag(key)
	return b
}

func (d *decoder) datetime(key string) *time.Time {
	if d.err != nil {
		return nil
	}
	var t *time.Time
	t, d.err = d.p.datetime(key)
	return t
}

func (d *decoder) requiredDatetime(key string) time.Time {
	if d.err != nil {
		return time.Time{}
	}
	var t time.Time
	t, d.err = d.p.requiredDatetime(key)
	return t
}

func (d *decoder) integer(key string) *int64 {
	if d.err != nil {
		return nil
	}
	var i *int64
	i, d.err = d.p.integer(key)
	return i
}

func (d *decoder) id(key string) *uuid.UUID {
	if d.err != nil {
		return nil
	}
	var id *uuid.UUID
	id, d.err = d.p.id(key)
	return id
}

func (d *decoder) requiredID(key string) uuid.UUID {
	if d.err != nil {
		return uuid.Nil
	}
	var id uuid.UUID
	id, d.err = d.p.requiredID(key)
	return id
}

func taskFromProps(p props) (*domain.Task, error) {
	d := decoder{p: p}
	task := &domain.Task{
		ID:          d.requiredID("id"),
		Title:       d.str("title"),
		Description: d.str("description"),
		Priority:    domain.Priority(d.str("priority")),
		Status:      domain.Status(d.str("status")),
		DueDate:     d.datetime("due_date"),
		CreatedBy:   d.requiredID("created_by"),
		AssignedTo:  d.id("assigned_to"),
		Notified:    d.flag("notified"),
		CreatedAt:   d.requiredDatetime("created_at"),
		UpdatedAt:   d.requiredDatetime("updated_at"),
	}
	if d.err != nil {
		return nil, fmt.Errorf("invalid task node: %w", d.err)
	}
	return task, nil
}

func userFromProps(p props) (*domain.User, error) {
	d := decoder{p: p}
	user := &domain.User{
		ID:             d.requiredID("id"),
		Email:          d.str("email"),
		Name:           d.str("name"),
		TelegramChatID: d.integer("telegram_chat_id"),
		CreatedAt:      d.requiredDatetime("created_at"),
		UpdatedAt:      d.requiredDatetime("updated_at"),
	}
	if d.err != nil {
		return nil, fmt.Errorf("invalid user node: %w", d.err)
	}
	return user, nil
}

func notificationFromProps(p props) (*domain.Notification, error) {
	d := decoder{p: p}
	n := &domain.Notification{
		ID:        d.requiredID("id"),
		UserID:    d.requiredID("user_id"),
		TaskID:    d.requiredID("task_id"),
		Message:   d.str("message"),
		Read:      d.flag("read"),
		CreatedAt: d.requiredDatetime("created_at"),
	}
	if d.err != nil {
		return nil, fmt.Errorf("invalid notification node: %w", d.err)
	}
	return n, nil
}

// nodeProps extracts the properties of the node bound to key.
func nodeProps(rec *neo4j.Record, key string) (props, error) {
	node, isNil, err := neo4j.GetRecordValue[neo4j.Node](rec, key)
	if err != nil {
		return nil, err
	}
	if isNil {
		return nil, fmt.Errorf("record key %s is null", key)
	}
	return props(node.Props), nil
}
