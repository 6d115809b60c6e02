package lexicon

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/operation"
	userentity "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
)

var (
	metaCols  = []string{"id", "state", "created_at", "created_by_id", "last_updated_at", "last_updated_by_id"}
	wordCols  = append(append([]string{}, metaCols...), "name", "slug", "stem", "length", "numeric", "acronym")
	termCols  = append(append([]string{}, metaCols...), "name", "slug")
	usageCols = append(append([]string{}, metaCols...), "name", "slug", "summary")
)

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

func run[T any](t *testing.T, tm *database.TxManager, op operation.Operation[T]) (T, error) {
	t.Helper()
	var res T
	err := tm.WithTransaction(context.Background(), func(ctx context.Context, tx database.Queryer) error {
		var err error
		res, err = operation.Execute(ctx, tx, op)
		return err
	})
	return res, err
}

func TestCreateWordDerivesFields(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "CreateWord")
	mock.ExpectQuery("INSERT INTO words").
		WithArgs("draft", sqlmock.AnyArg(), nil, "Running", "running", "run", 7, false, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	w, err := run[*entity.Word](t, tm, NewCreateWord(CreateWordOptions{Name: "Running"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.ID)
	assert.Equal(t, "running", w.Slug)
	assert.Equal(t, "run", w.Stem)
	assert.Equal(t, 7, w.Length)
	assert.False(t, w.Numeric)
	assert.Equal(t, content.StateDraft, w.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectWordLoad(mock sqlmock.Sqlmock, acronym bool) {
	expectEvent(mock, "GetWord")
	mock.ExpectQuery("SELECT (.+) FROM words WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(wordCols).AddRow(
			int64(1), "published", time.Now(), nil, nil, nil, "Running", "running", "run", 7, false, acronym))
}

func TestUpdateWordRederivesFromName(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "UpdateWord")
	expectWordLoad(mock, false)
	mock.ExpectExec("UPDATE words").
		WithArgs(int64(1), "published", sqlmock.AnyArg(), nil, "Run2", "run2", sqlmock.AnyArg(), 4, false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	name := "Run2"
	w, err := run[*entity.Word](t, tm, NewUpdateWord(UpdateWordOptions{
		UpdateBase: content.UpdateBase{ID: 1},
		Name:       &name,
	}))
	require.NoError(t, err)
	assert.Equal(t, "run2", w.Slug)
	assert.Equal(t, 4, w.Length)
	assert.False(t, w.Numeric)
	assert.NotNil(t, w.LastUpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWordKeepsOmittedFields(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "UpdateWord")
	expectWordLoad(mock, true)
	mock.ExpectExec("UPDATE words").
		WithArgs(int64(1), "published", sqlmock.AnyArg(), nil, "Running", "running", "run", 7, false, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w, err := run[*entity.Word](t, tm, NewUpdateWord(UpdateWordOptions{UpdateBase: content.UpdateBase{ID: 1}}))
	require.NoError(t, err)
	assert.Equal(t, "Running", w.Name)
	assert.True(t, w.Acronym)
	assert.Equal(t, content.StatePublished, w.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTermLinksNewAndExistingWords(t *testing.T) {
	tm, mock := newMock(t)
	mock.ExpectBegin()
	expectEvent(mock, "CreateTerm")
	expectEvent(mock, "FindCreateWords")
	expectEvent(mock, "FindWords")
	mock.ExpectQuery("SELECT (.+) FROM words WHERE slug = ANY").
		WithArgs(pq.Array([]string{"fast", "running"}), 0, 100).
		WillReturnRows(sqlmock.NewRows(wordCols).AddRow(
			int64(1), "draft", time.Now(), nil, nil, nil, "fast", "fast", "fast", 4, false, false))
	expectEvent(mock, "CreateWords")
	mock.ExpectQuery("INSERT INTO words").
		WithArgs("draft", sqlmock.AnyArg(), nil, "Running", "running", "run", 7, false, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectQuery("INSERT INTO terms").
		WithArgs("draft", sqlmock.AnyArg(), nil, "Fast Running", "fast-running").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec("INSERT INTO term_words").
		WithArgs(int64(10), pq.Array([]int64{2, 1})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	term, err := run[*entity.Term](t, tm, NewCreateTerm(CreateTermOptions{Name: "Fast Running"}))
	require.NoError(t, err)
	assert.Equal(t, int64(10), term.ID)
	assert.Equal(t, "fast-running", term.Slug)
	require.Len(t, term.Words, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateConnectionRequiresTerm(t *testing.T) {
	tm, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	expectEvent(mock, "CreateConnection")
	expectEvent(mock, "GetTerm")
	expectEvent(mock, "GetUsage")
	mock.ExpectQuery("SELECT (.+) FROM terms WHERE id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(termCols))
	mock.ExpectQuery("SELECT (.+) FROM usages WHERE id").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(usageCols).AddRow(
			int64(4), "published", time.Now(), nil, nil, nil, "Physics", "physics", "The study of matter."))
	mock.ExpectRollback()

	c, err := run[*entity.Connection](t, tm, NewCreateConnection(CreateConnectionOptions{TermID: 3, UsageID: 4}))
	assert.Nil(t, c)
	var ierr *operation.InvariantError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "Term could not be found.", ierr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInquiryValidatesMessage(t *testing.T) {
	err := CreateInquiryOptions{Name: "Ada", Email: "ada@example.com", Message: "too short"}.Validate()
	var verr *operation.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "message", verr.Fields[0].Field)
	assert.Equal(t, "Message must be at least 10 characters.", verr.Fields[0].Message)

	assert.NoError(t, CreateInquiryOptions{Name: "Ada", Email: "ada@example.com", Message: "What does fast mean?"}.Validate())
}

func TestCreateUsageRequiresSummary(t *testing.T) {
	err := CreateUsageOptions{Name: "Physics"}.Validate()
	var verr *operation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "summary", verr.Fields[0].Field)
}

func TestViewHidesEmailsAtEveryDepth(t *testing.T) {
	owner := func(id int64) *userentity.User {
		return &userentity.User{ID: id, Name: "Ada", Email: "ada@example.com"}
	}
	usage := &entity.Usage{Content: content.Content{CreatedBy: owner(5)}}
	conn := &entity.Connection{Content: content.Content{LastUpdatedBy: owner(6)}, Usage: usage}
	usage.Connections = []*entity.Connection{conn}
	term := &entity.Term{
		Content:     content.Content{CreatedBy: owner(7)},
		Words:       []*entity.Word{{Content: content.Content{CreatedBy: owner(8)}}, nil},
		Connections: []*entity.Connection{conn},
	}
	conn.Term = term

	View(&operation.Actor{ID: 5, Role: "contributor"}, []*entity.Term{term})
	assert.Equal(t, "ada@example.com", usage.CreatedBy.Email)
	assert.Empty(t, conn.LastUpdatedBy.Email)
	assert.Empty(t, term.CreatedBy.Email)
	assert.Empty(t, term.Words[0].CreatedBy.Email)

	inquiry := &entity.Inquiry{Content: content.Content{CreatedBy: owner(9)}, Email: "bob@example.com"}
	View(nil, inquiry)
	assert.Empty(t, inquiry.Email)
	assert.Empty(t, inquiry.CreatedBy.Email)
}
