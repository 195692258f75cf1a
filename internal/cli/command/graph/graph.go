package graph

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/graph"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/ui"
)

type GraphCommandFactory struct{}

func NewGraphCommandFactory() *GraphCommandFactory {
	return &GraphCommandFactory{}
}

func (f *GraphCommandFactory) CreateCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: t.GetMessage("cmd_graph_usage", 0, nil),
		Commands: []*cli.Command{
			f.newListCommand(t, s, "deps", "cmd_graph_deps_usage", graph.Store.OutboundOf),
			f.newListCommand(t, s, "dependents", "cmd_graph_dependents_usage", graph.Store.InboundOf),
			f.newCycleCommand(t, s),
			f.newDumpCommand(t, s),
		},
	}
}

type lookupFunc func(graph.Store, context.Context, models.PRRef) ([]models.PRRef, error)

func (f *GraphCommandFactory) newListCommand(t *i18n.Translations, s *registry.Session, name, usage string, lookup lookupFunc) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     t.GetMessage(usage, 0, nil),
		ArgsUsage: "owner/repo#n",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref, store, err := open(ctx, cmd, t, s)
			if err != nil {
				return err
			}

			refs, err := lookup(store, ctx, ref)
			if err != nil {
				return err
			}
			ui.PrintRefs(registry.Writer(cmd), refs)
			return nil
		},
	}
}

func (f *GraphCommandFactory) newCycleCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:      "cycle",
		Usage:     t.GetMessage("cmd_graph_cycle_usage", 0, nil),
		ArgsUsage: "owner/repo#n",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-nodes",
				Usage: t.GetMessage("flag_max_nodes_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref, store, err := open(ctx, cmd, t, s)
			if err != nil {
				return err
			}

			maxNodes := int(cmd.Int("max-nodes"))
			if maxNodes <= 0 {
				cfg, err := s.Config(cmd)
				if err != nil {
					return err
				}
				maxNodes = cfg.Graph.MaxCycleNodes
			}

			res, err := graph.DetectCycle(ctx, ref, store, graph.WithMaxNodes(maxNodes))
			if err != nil {
				return err
			}

			w := registry.Writer(cmd)
			chain := models.FormatChain(res.Path)
			switch res.Kind {
			case models.CycleFound:
				ui.PrintError(w, t.GetMessage("cycle_found", 0, map[string]interface{}{"Chain": chain}))
			case models.CycleBudgetExceeded:
				ui.PrintWarning(w, t.GetMessage("cycle_budget", 0, map[string]interface{}{"Budget": maxNodes, "Chain": chain}))
			default:
				ui.PrintSuccess(w, t.GetMessage("cycle_none", 0, nil))
			}
			return nil
		},
	}
}

func (f *GraphCommandFactory) newDumpCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: t.GetMessage("cmd_graph_dump_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := s.Open(ctx, cmd)
			if err != nil {
				return err
			}
			store, err := c.GetStore(ctx)
			if err != nil {
				return err
			}

			edges, err := store.ListEdges(ctx)
			if err != nil {
				return err
			}

			w := registry.Writer(cmd)
			if len(edges) == 0 {
				ui.PrintInfo(w, t.GetMessage("no_edges", 0, nil))
				return nil
			}
			ui.PrintEdges(w, edges)
			return nil
		},
	}
}

func open(ctx context.Context, cmd *cli.Command, t *i18n.Translations, s *registry.Session) (models.PRRef, graph.Store, error) {
	if !cmd.Args().Present() {
		return models.PRRef{}, nil, fmt.Errorf("%s", t.GetMessage("ref_required", 0, nil))
	}
	ref, err := models.ParsePRRef(cmd.Args().First())
	if err != nil {
		return models.PRRef{}, nil, err
	}

	c, err := s.Open(ctx, cmd)
	if err != nil {
		return models.PRRef{}, nil, err
	}
	store, err := c.GetStore(ctx)
	if err != nil {
		return models.PRRef{}, nil, err
	}
	return ref, store, nil
}
