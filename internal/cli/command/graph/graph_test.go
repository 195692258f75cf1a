package graph

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/config"
	"github.com/g30r93g/PRereq/internal/graph"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/infrastructure/di"
	"github.com/g30r93g/PRereq/internal/models"
)

func ref(n int) models.PRRef {
	return models.NewPRRef("acme", "widgets", n)
}

// setupGraphTest seeds 1 → 2, 2 → 3 and 3 → 1.
func setupGraphTest(t *testing.T, cyclic bool) (*cli.Command, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	ctx := context.Background()

	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	cfg := config.Default(filepath.Join(t.TempDir(), "config.json"))
	cfg.Storage.Driver = config.DriverMemory

	store := graph.NewMemoryStore()
	require.NoError(t, store.ReplaceEdges(ctx, ref(1), []models.PRRef{ref(2)}))
	require.NoError(t, store.ReplaceEdges(ctx, ref(2), []models.PRRef{ref(3)}))
	if cyclic {
		require.NoError(t, store.ReplaceEdges(ctx, ref(3), []models.PRRef{ref(1)}))
	}

	c := di.NewContainer(cfg, trans)
	c.SetStore(store)
	s := registry.NewSession(cfg, trans)
	s.SetContainer(c)

	var out bytes.Buffer
	return &cli.Command{
		Name:     "prereq",
		Flags:    s.Flags(),
		Writer:   &out,
		Commands: []*cli.Command{NewGraphCommandFactory().CreateCommand(trans, s)},
	}, &out
}

func TestGraphCommand_Lists(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"deps", []string{"prereq", "graph", "deps", "acme/widgets#1"}, "acme/widgets#2\n"},
		{"dependents", []string{"prereq", "graph", "dependents", "acme/widgets#3"}, "acme/widgets#2\n"},
		{"unknown node", []string{"prereq", "graph", "deps", "acme/widgets#99"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			app, out := setupGraphTest(t, false)

			// Act
			err := app.Run(context.Background(), tt.args)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestGraphCommand_RequiresRef(t *testing.T) {
	app, _ := setupGraphTest(t, false)

	err := app.Run(context.Background(), []string{"prereq", "graph", "deps"})

	assert.EqualError(t, err, "a pull request reference is required")
}

func TestGraphCommand_RejectsMalformedRef(t *testing.T) {
	app, _ := setupGraphTest(t, false)

	err := app.Run(context.Background(), []string{"prereq", "graph", "deps", "not-a-ref"})

	assert.Error(t, err)
}

func TestGraphCommand_Cycle(t *testing.T) {
	t.Run("should report a cycle", func(t *testing.T) {
		// Arrange
		app, out := setupGraphTest(t, true)

		// Act
		err := app.Run(context.Background(), []string{"prereq", "graph", "cycle", "acme/widgets#1"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Circular dependency: ")
		assert.Contains(t, out.String(), "acme/widgets#1")
	})

	t.Run("should report an acyclic graph", func(t *testing.T) {
		// Arrange
		app, out := setupGraphTest(t, false)

		// Act
		err := app.Run(context.Background(), []string{"prereq", "graph", "cycle", "acme/widgets#1"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "No circular dependency found")
	})

	t.Run("should report an exhausted budget", func(t *testing.T) {
		// Arrange
		app, out := setupGraphTest(t, false)

		// Act
		err := app.Run(context.Background(), []string{"prereq", "graph", "cycle", "--max-nodes", "1", "acme/widgets#3"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Exploration budget of 1 exceeded")
	})
}

func TestGraphCommand_Dump(t *testing.T) {
	t.Run("should print every edge", func(t *testing.T) {
		// Arrange
		app, out := setupGraphTest(t, false)

		// Act
		err := app.Run(context.Background(), []string{"prereq", "graph", "dump"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "acme/widgets#1 → acme/widgets#2\nacme/widgets#2 → acme/widgets#3\n", out.String())
	})
}
