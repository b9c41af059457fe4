package explorer

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apiexplorer/pkg/apiexplorer"
)

type Book struct {
	ISBN   string `validate:"required"`
	Title  string
	Rating *int
}

type Session struct{}

type BooksController struct{}

func (BooksController) List(page int) []Book                   { return nil }
func (BooksController) Get(isbn string) Book                   { return Book{} }
func (BooksController) Create(book Book, session Session) Book { return book }

func booksSource() *apiexplorer.StaticSource {
	return apiexplorer.NewStaticSource().
		AddHandler("GET", "/books", apiexplorer.MethodHandler(BooksController{}, "List", "page")).
		AddHandler("GET", "/books/{isbn}", apiexplorer.MethodHandler(BooksController{}, "Get", "isbn"))
}

func TestCollection_IsLazyAndCached(t *testing.T) {
	source := booksSource()
	e := New(source)
	assert.Equal(t, 0, e.Builds())

	first, err := e.Collection()
	require.NoError(t, err)
	assert.Equal(t, 1, e.Builds())
	assert.Equal(t, 2, first.TotalCount())
	assert.Equal(t, source.Version(), first.Version())

	second, err := e.Collection()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, e.Builds())
}

func TestCollection_RebuildsOnSourceChange(t *testing.T) {
	source := booksSource()
	e := New(source)

	before, err := e.Collection()
	require.NoError(t, err)

	source.AddHandler("POST", "/books", apiexplorer.MethodHandler(BooksController{}, "Create", "book", "session"))

	after, err := e.Collection()
	require.NoError(t, err)
	assert.Equal(t, 2, e.Builds())
	assert.Equal(t, 3, after.TotalCount())
	assert.Greater(t, after.Version(), before.Version())

	// the earlier collection is unaffected
	assert.Equal(t, 2, before.TotalCount())
}

func TestCollection_Invalidate(t *testing.T) {
	e := New(booksSource())

	_, err := e.Collection()
	require.NoError(t, err)
	e.Invalidate()
	_, err = e.Collection()
	require.NoError(t, err)

	assert.Equal(t, 2, e.Builds())
}

func TestCollection_ConcurrentCallersShareOneBuild(t *testing.T) {
	e := New(booksSource())

	var wg sync.WaitGroup
	results := make([]*apiexplorer.OperationGroupCollection, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := e.Collection()
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, e.Builds())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestCollection_ProviderFailure(t *testing.T) {
	boom := errors.New("boom")
	e := New(booksSource(), WithProvider(ProviderFuncs{
		Label:     "broken",
		Executing: func(*Context) error { return boom },
	}))

	c, err := e.Collection()
	assert.Nil(t, c)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, e.Builds())
}

func TestOptions_Grouping(t *testing.T) {
	source := booksSource()
	source.Add(apiexplorer.OperationDeclaration{
		HTTPMethod:    "GET",
		RouteTemplate: "/v2/books",
		Handler:       apiexplorer.FuncHandler("ListV2", func() []Book { return nil }),
		RouteValues:   map[string]string{"version": "v2"},
	})
	source.Add(apiexplorer.OperationDeclaration{
		HTTPMethod:    "GET",
		RouteTemplate: "/v1/books",
		Handler:       apiexplorer.FuncHandler("ListV1", func() []Book { return nil }),
		RouteValues:   map[string]string{"version": "v1"},
	})

	e := New(source,
		WithProvider(GroupByRouteValue("version")),
		WithProvider(OperationIDProvider()),
		WithDefaultGroupName("unversioned"),
		WithGroupOrdering(SemanticVersion),
	)
	c, err := e.Collection()
	require.NoError(t, err)

	assert.Equal(t, []string{"v1", "v2", "unversioned"}, c.GroupNames())
	group, ok := c.Group("unversioned")
	require.True(t, ok)
	assert.Equal(t, "getBooks", group.Operations[0].OperationID)
	assert.Equal(t, "getBooksByIsbn", group.Operations[1].OperationID)
}

func TestOptions_BindingOverride(t *testing.T) {
	source := apiexplorer.NewStaticSource().
		AddHandler("POST", "/books", apiexplorer.MethodHandler(BooksController{}, "Create", "book", "session"))

	plain, err := New(source).Collection()
	require.NoError(t, err)
	ops := plain.Operations()
	require.Len(t, ops[0].Diagnostics, 1, "two complex parameters both bind to the body")

	overridden, err := New(source, WithBindingOverride(reflect.TypeOf(Session{}), apiexplorer.SourceService)).Collection()
	require.NoError(t, err)
	op := overridden.Operations()[0]
	assert.Empty(t, op.Diagnostics)
	session, ok := op.Parameter("session")
	require.True(t, ok)
	assert.Equal(t, apiexplorer.SourceService, session.Source)
}

func TestGetMetadata(t *testing.T) {
	bookType := reflect.TypeOf(Book{})

	t.Run("compatibility", func(t *testing.T) {
		latest := New(apiexplorer.NewStaticSource())
		md, err := latest.GetMetadata(bookType, "Title")
		require.NoError(t, err)
		assert.True(t, md.IsRequired)

		legacy := New(apiexplorer.NewStaticSource(), WithCompatibility(apiexplorer.Version2))
		md, err = legacy.GetMetadata(bookType, "Title")
		require.NoError(t, err)
		assert.False(t, md.IsRequired)

		md, err = legacy.GetMetadata(bookType, "ISBN")
		require.NoError(t, err)
		assert.True(t, md.IsRequired)
	})

	t.Run("custom detail provider", func(t *testing.T) {
		labels := NewDetailProvider("labels", func(m Member, p Partial) (Partial, error) {
			if m.IsType() {
				return p, nil
			}
			return Partial{DisplayName: Ptr("Book " + m.Key.Member)}, nil
		})
		e := New(apiexplorer.NewStaticSource(), WithDetailProvider(labels))
		assert.Equal(t, []string{"binding", "validation", "annotations", "labels"}, e.MetadataProviders())

		md, err := e.GetMetadata(bookType, "Title")
		require.NoError(t, err)
		assert.Equal(t, "Book Title", md.DisplayName)
	})

	t.Run("failures are returned and not cached", func(t *testing.T) {
		var calls atomic.Int32
		failing := NewDetailProvider("failing", func(m Member, p Partial) (Partial, error) {
			calls.Add(1)
			return p, errors.New("unavailable")
		})
		e := New(apiexplorer.NewStaticSource())
		e.AddDetailProvider(failing)

		_, err := e.GetMetadata(bookType, "Rating")
		var resolution *apiexplorer.MetadataResolutionError
		require.True(t, errors.As(err, &resolution))
		assert.Equal(t, "failing", resolution.Provider)
		assert.Equal(t, "Rating", resolution.Member)

		_, err = e.GetMetadata(bookType, "Rating")
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 0, e.CacheStats().Size)
	})
}
