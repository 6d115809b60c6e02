package operation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

type echoOptions struct {
	Name     string `json:"name"`
	Password string `json:"-"`
}

type echoOp struct {
	Base[echoOptions]
	fail error
}

func (o *echoOp) Name() string { return "Echo" }

func (o *echoOp) Run(ctx context.Context, tx database.Queryer) (string, error) {
	if o.fail != nil {
		return "", o.fail
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO words (name) VALUES ($1)", o.Opts.Name); err != nil {
		return "", err
	}
	return o.Opts.Name, nil
}

func newEcho(name string) *echoOp {
	return &echoOp{Base: Base[echoOptions]{Opts: echoOptions{Name: name, Password: "hunter22"}}}
}

func newMock(t *testing.T) (*database.TxManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewTxManager(sqlx.NewDb(db, "postgres")), mock
}

func TestExecuteWritesOneEventBeforeEffect(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Echo", []byte(`{"name":"foo"}`), sqlmock.AnyArg(), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO words").WithArgs("foo").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := WithActor(context.Background(), &Actor{ID: 7, Name: "Ada", Role: "contributor"})
	var got string
	err := tm.WithTransaction(ctx, func(ctx context.Context, tx database.Queryer) error {
		var err error
		got, err = Execute[string](ctx, tx, newEcho("foo"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "foo", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteAnonymousHasNullCreator(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Echo", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec("INSERT INTO words").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		_, err := Execute[string](ctx, tx, newEcho("bar"))
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteFailureRollsBackEvent(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectRollback()

	boom := errors.New("boom")
	op := newEcho("foo")
	op.fail = boom
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		_, err := Execute[string](ctx, tx, op)
		return err
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteRefusesSecondRun(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO words").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	op := newEcho("foo")
	var second error
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		if _, err := Execute[string](ctx, tx, op); err != nil {
			return err
		}
		_, second = Execute[string](ctx, tx, op)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, second, ErrAlreadyExecuted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusForbidden, StatusCode(ErrNotSupported))
	assert.Equal(t, http.StatusForbidden, StatusCode(ErrForbidden))
	assert.Equal(t, http.StatusForbidden, StatusCode(fmt.Errorf("update user 2: %w", ErrForbidden)))
	assert.Equal(t, http.StatusNotFound, StatusCode(ErrNotFound))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(ErrInvalidCredentials))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(&ValidationError{Fields: []FieldError{{Field: "name"}}}))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(&InvariantError{Message: "Term could not be found."}))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(errors.Join(errors.New("ctx"), ErrTokenExpired)))
}

func TestCheckerCollectsAllFields(t *testing.T) {
	var c Checker
	c.Required("name", " ")
	c.Email("email", "not-an-email", "Please enter a valid email address.")
	c.UUID4("token", "123", "Invalid confirmation token.")
	c.MinLength("message", "short", 10)
	c.OneOf("state", "archived", "draft", "published", "deleted")

	var verr *ValidationError
	require.ErrorAs(t, c.Err(), &verr)
	require.Len(t, verr.Fields, 5)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Equal(t, "state", verr.Fields[4].Field)
	assert.Equal(t, "Please enter a valid email address.", verr.Fields[1].Message)

	var ok Checker
	ok.Email("email", "ada@example.com", "bad")
	ok.UUID4("token", "7c9e6679-7425-40de-944b-e07fc1f90ae7", "bad")
	ok.Length("name", "Ada", 1, 255, "bad")
	assert.NoError(t, ok.Err())
}
