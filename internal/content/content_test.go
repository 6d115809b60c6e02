package content

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	userentity "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

type note struct {
	Content
	Title string
	Tags  []string
}

func (n *note) Attach(key string, v any) {
	if key == "tags" {
		n.Tags, _ = v.([]string)
		return
	}
	n.Content.Attach(key, v)
}

type memStore struct {
	mu   sync.Mutex
	rows map[int64]*note
}

func (s *memStore) Get(_ context.Context, id int64) (*note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (s *memStore) Find(_ context.Context, _ FindOptions) ([]*note, error) { return nil, nil }

func (s *memStore) Insert(_ context.Context, n *note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = int64(len(s.rows) + 1)
	s.rows[n.ID] = n
	return nil
}

func (s *memStore) Update(_ context.Context, n *note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[n.ID] = n
	return nil
}

func newKind(store *memStore, extra Populaters[*note]) *Kind[*note] {
	return &Kind[*note]{
		Name:         "Note",
		Plural:       "Notes",
		DefaultState: StateDraft,
		Store:        func(database.Queryer) Store[*note] { return store },
		Populaters:   DefaultPopulaters(extra),
	}
}

func newMock(t *testing.T) (*database.TxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewTxManager(sqlx.NewDb(db, "postgres")), mock
}

func expectEvent(mock sqlmock.Sqlmock, name string) {
	mock.ExpectQuery("INSERT INTO events").
		WithArgs(name, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
}

var userCols = []string{
	"id", "state", "role", "name", "email", "email_confirmed_at", "email_confirmation_token",
	"password_hash", "password_reset_at", "password_reset_token", "last_authenticated_at", "created_at", "created_by_id", "last_updated_at", "last_updated_by_id",
}

func TestExpandPaths(t *testing.T) {
	p := ExpandPaths([]string{"createdBy", "connections.term", "connections.usage", " "})
	assert.Equal(t, Paths{
		"createdBy":   Paths{},
		"connections": Paths{"term": Paths{}, "usage": Paths{}},
	}, p)
}

func TestCollapseExpandRoundTrip(t *testing.T) {
	in := []string{"words", "connections.usage.createdBy", "createdBy", "connections.term"}
	assert.Equal(t,
		[]string{"connections.term", "connections.usage.createdBy", "createdBy", "words"},
		CollapsePaths(ExpandPaths(in)))
	assert.Empty(t, CollapsePaths(ExpandPaths(nil)))
}

func TestSplitRelations(t *testing.T) {
	assert.Equal(t, []string{"a", "b.c", "b.d"}, SplitRelations("a, b.c,,b.d"))
	assert.Nil(t, SplitRelations(""))
}

func TestPopulateIgnoresUnknownRelations(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	n := &note{Title: "x"}
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		return Populate(ctx, tx, n, DefaultPopulaters[*note](nil), []string{"nonsense", "also.nonsense"})
	})
	require.NoError(t, err)
	assert.Nil(t, n.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopulateNullForeignKeySkipsLookup(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	n := &note{}
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		return Populate(ctx, tx, n, DefaultPopulaters[*note](nil), []string{"createdBy"})
	})
	require.NoError(t, err)
	assert.Nil(t, n.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopulateCreatedByResolvesUser(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "GetUser")
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(
			int64(5), "active", "admin", "Ada", "ada@example.com", nil, nil, "h", nil, nil, nil, time.Now(), nil, nil, nil))
	mock.ExpectCommit()

	id := int64(5)
	n := &note{Content: Content{CreatedByID: &id}}
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		return Populate(ctx, tx, n, DefaultPopulaters[*note](nil), []string{"createdBy"})
	})
	require.NoError(t, err)
	require.NotNil(t, n.CreatedBy)
	assert.Equal(t, int64(5), n.CreatedBy.ID)
	assert.Equal(t, userentity.RoleAdmin, n.CreatedBy.Role)
	assert.Nil(t, n.LastUpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopulateRunsSiblingsConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	barrier := func(v any) Populater[*note] {
		return func(ctx context.Context, _ database.Queryer, _ *note, _ []string) (any, error) {
			started.Done()
			done := make(chan struct{})
			go func() { started.Wait(); close(done) }()
			select {
			case <-done:
				return v, nil
			case <-time.After(2 * time.Second):
				return nil, assert.AnError
			}
		}
	}
	var gotSub []string
	pops := Populaters[*note]{
		"tags": barrier([]string{"a", "b"}),
		"other": func(ctx context.Context, tx database.Queryer, n *note, rel []string) (any, error) {
			gotSub = rel
			return barrier(nil)(ctx, tx, n, rel)
		},
	}

	n := &note{}
	err := Populate(context.Background(), nil, n, pops, []string{"tags", "other.x.y", "other.z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	assert.Equal(t, []string{"x.y", "z"}, gotSub)
}

func TestCreateStampsAndDefaultsState(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "CreateNote")
	mock.ExpectCommit()

	store := &memStore{rows: map[int64]*note{}}
	kind := newKind(store, nil)
	opts := noteOptions{Title: "hello"}
	ctx := operation.WithActor(context.Background(), &operation.Actor{ID: 3})
	var n *note
	err := tm.WithTransaction(ctx, func(ctx context.Context, tx database.Queryer) error {
		var err error
		n, err = operation.Execute[*note](ctx, tx, NewCreate(kind, opts, buildNote))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
	assert.Equal(t, StateDraft, n.State)
	require.NotNil(t, n.CreatedByID)
	assert.Equal(t, int64(3), *n.CreatedByID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type noteOptions struct {
	Title string `json:"title"`
	StateOption
}

func (o noteOptions) Validate() error {
	var c operation.Checker
	c.Required("title", o.Title)
	o.CheckState(&c)
	return c.Err()
}

func buildNote(_ context.Context, _ database.Queryer, o noteOptions) (*note, error) {
	return &note{Title: o.Title}, nil
}

type updateNoteOptions struct {
	UpdateBase
	Title *string `json:"title,omitempty"`
}

func (o updateNoteOptions) Validate() error {
	var c operation.Checker
	o.UpdateBase.Check(&c)
	return c.Err()
}

func mergeNote(_ context.Context, _ database.Queryer, n *note, o updateNoteOptions) error {
	if o.Title != nil {
		n.Title = *o.Title
	}
	return nil
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "UpdateNote")
	expectEvent(mock, "GetNote")
	mock.ExpectCommit()

	store := &memStore{rows: map[int64]*note{1: {Content: Content{ID: 1, State: StatePublished}, Title: "old"}}}
	kind := newKind(store, nil)
	var n *note
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		var err error
		n, err = operation.Execute[*note](ctx, tx, NewUpdate(kind, updateNoteOptions{UpdateBase: UpdateBase{ID: 1}}, mergeNote))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "old", n.Title)
	assert.Equal(t, StatePublished, n.State)
	assert.NotNil(t, n.LastUpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndGetMissingReturnNil(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "UpdateNote")
	expectEvent(mock, "GetNote")
	mock.ExpectCommit()

	kind := newKind(&memStore{rows: map[int64]*note{}}, nil)
	title := "new"
	var n *note
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		var err error
		n, err = operation.Execute[*note](ctx, tx, NewUpdate(kind, updateNoteOptions{UpdateBase: UpdateBase{ID: 9}, Title: &title}, mergeNote))
		return err
	})
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsInvalidOptions(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "CreateNote")
	mock.ExpectRollback()

	bad := State("archived")
	kind := newKind(&memStore{rows: map[int64]*note{}}, nil)
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		_, err := operation.Execute[*note](ctx, tx, NewCreate(kind, noteOptions{StateOption: StateOption{State: &bad}}, buildNote))
		return err
	})
	var verr *operation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
