package completion

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/i18n"
)

const bashCompletionScript = `#! /bin/bash

_prereq_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _prereq_bash_autocomplete prereq
`

const zshCompletionScript = `#compdef prereq

_prereq() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _prereq prereq
`

type CompletionCommandFactory struct{}

func NewCompletionCommandFactory() *CompletionCommandFactory {
	return &CompletionCommandFactory{}
}

func (f *CompletionCommandFactory) CreateCommand(t *i18n.Translations, _ *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "completion",
		Usage: t.GetMessage("cmd_completion_usage", 0, nil),
		Commands: []*cli.Command{
			script("bash", bashCompletionScript),
			script("zsh", zshCompletionScript),
		},
	}
}

func script(shell, body string) *cli.Command {
	return &cli.Command{
		Name: shell,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprint(registry.Writer(cmd), body)
			return err
		},
	}
}

// FlagComplete prints every flag of the current command so shells can offer
// them even where the built-in completion falls short.
func FlagComplete(_ context.Context, cmd *cli.Command) {
	w := registry.Writer(cmd)
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(w, "-"+name)
			} else {
				_, _ = fmt.Fprintln(w, "--"+name)
			}
		}
	}
}
