package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/collection"
	"github.com/me/storecms/pkg/cmsapi"
)

const listTimeout = 60 * time.Second

var errLoginRequired = errors.New("not signed in: run `storecms login`")

// loginNavigator stands in for the browser redirect: it tells the operator
// to sign in again and remembers that it did.
type loginNavigator struct {
	out        io.Writer
	redirected atomic.Bool
}

func (n *loginNavigator) Navigate(path string) {
	if path != collection.LoginPath {
		return
	}
	if n.redirected.CompareAndSwap(false, true) {
		fmt.Fprintln(n.out, "Session rejected by the server; credentials cleared. Run `storecms login` to sign in again.")
	}
}

// listFlags are the paging and search flags shared by the list commands.
type listFlags struct {
	page    int
	limit   int
	keyword string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&f.limit, "limit", collection.DefaultLimit, "Items per page")
	cmd.Flags().StringVarP(&f.keyword, "keyword", "k", "", "Filter by keyword")
}

func (f *listFlags) params() map[string]any {
	return map[string]any{"keyword": f.keyword}
}

func (f *listFlags) zeroBasedPage() int {
	return max(f.page-1, 0)
}

// show waits for the controller's fetch and renders its state.
func show[T any](cmd *cobra.Command, ctrl *collection.Controller[T], render func(w io.Writer, data T)) error {
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), listTimeout)
	defer cancel()
	if err := ctrl.Wait(ctx); err != nil {
		return err
	}

	st := ctrl.State()
	if nav.redirected.Load() {
		return errLoginRequired
	}
	if st.Err != nil {
		return errors.New(cmsapi.Message(st.Err))
	}

	w := cmd.OutOrStdout()
	if flagOutput == "json" {
		return printJSON(w, st.Data)
	}
	render(w, st.Data)
	return nil
}

// showList renders a list state and the page footer.
func showList[T any](cmd *cobra.Command, ctrl *collection.Controller[[]T], empty string, render func(w io.Writer, items []T)) error {
	return show(cmd, ctrl, func(w io.Writer, items []T) {
		if len(items) == 0 {
			fmt.Fprintln(w, empty)
			return
		}
		render(w, items)
		p := ctrl.State().Pagination
		pages := 1
		if p.Limit > 0 && p.Total > 0 {
			pages = (p.Total + p.Limit - 1) / p.Limit
		}
		fmt.Fprintf(w, "\nPage %d of %d (%s items)\n", p.Page+1, pages, humanize.Comma(int64(p.Total)))
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ago renders an RFC 3339 timestamp relative to now.
func ago(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// result prints a mutation result as JSON or a one-line confirmation.
func result(cmd *cobra.Command, v any, format string, args ...any) error {
	if flagOutput == "json" {
		return printJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return nil
}

// callErr converts a failed call into the operator-facing message.
func callErr(action string, err error) error {
	if cmsapi.IsForbidden(err) {
		sess.Clear()
		return errLoginRequired
	}
	return fmt.Errorf("%s: %s", action, cmsapi.Message(err))
}
