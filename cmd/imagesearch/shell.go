package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/amaumene/imagesearch/internal/controllers"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/spf13/cobra"
)

const shellHelp = `commands:
  search <query>   new query from the first pages
  next             next pages (replaces the list)
  refresh          fetch the current pages again
  save <n>         toggle saved status of item n
  reload           re-read saved status from favorites
  favorites        list saved items
  remove <id>      remove a saved item
  state            print the current list
  quit`

func shellCMD() *cobra.Command {
	var noPersist bool
	var shell = &cobra.Command{
		Use:   "shell",
		Short: "Interactive search session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := newApp(ctx, !noPersist)
			if err != nil {
				return err
			}
			defer a.Close()

			return runShell(ctx, a.session, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	shell.Flags().BoolVar(&noPersist, "no-persist", false, "keep favorites and keyword in memory only")

	return shell
}

// syncWriter serialises writes from the prompt loop and the notice watcher
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func runShell(ctx context.Context, session *controllers.SessionController, in io.Reader, w io.Writer) error {
	out := &syncWriter{w: w}

	states, unsubscribe := session.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for st := range states {
			renderNotice(out, st.Notice)
		}
	}()
	defer func() {
		unsubscribe()
		<-done
	}()

	renderHeader(out, session.State())
	fmt.Fprintln(out, shellHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		if name == "quit" || name == "exit" {
			return nil
		}
		if err := shellCommand(ctx, session, out, name, arg); err != nil {
			if errors.Is(err, models.ErrSessionClosed) {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func shellCommand(ctx context.Context, session *controllers.SessionController, out io.Writer, name, arg string) error {
	switch name {
	case "search":
		if err := session.SubmitQuery(ctx, arg); err != nil {
			return err
		}
	case "next":
		if err := session.OnScrollEnd(ctx); err != nil {
			return err
		}
	case "refresh":
		if err := session.Refresh(ctx); err != nil {
			return err
		}
	case "save":
		items := session.State().Items
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(items) {
			return fmt.Errorf("item number must be between 1 and %d", len(items))
		}
		if _, err := session.ToggleItem(ctx, items[n-1]); err != nil {
			return err
		}
		return nil
	case "reload":
		if err := session.ReloadSavedStatus(ctx); err != nil {
			return err
		}
	case "favorites":
		items, err := session.ListFavorites(ctx)
		if err != nil {
			return err
		}
		renderItems(out, items)
		return nil
	case "remove":
		if arg == "" {
			return fmt.Errorf("remove needs an id")
		}
		items, err := session.RemoveFavorite(ctx, arg)
		if err != nil {
			return err
		}
		renderItems(out, items)
		return nil
	case "state":
	case "help":
		fmt.Fprintln(out, shellHelp)
		return nil
	default:
		return fmt.Errorf("unknown command %q, type help", name)
	}

	state := session.State()
	renderHeader(out, state)
	renderItems(out, state.Items)
	return nil
}
