package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cashloan/internal/domain"
	"cashloan/internal/listview"
	"cashloan/internal/session"

	"github.com/spf13/cobra"
)

// listFlags are the query flags shared by every list command.
type listFlags struct {
	search  string
	filters map[string]*string
	sortBy  string
	order   string
	page    int
	perPage int
	asJSON  bool
}

func newListFlags(filterKeys ...string) *listFlags {
	f := &listFlags{filters: map[string]*string{}}
	for _, k := range filterKeys {
		f.filters[k] = new(string)
	}
	return f
}

func (f *listFlags) bind(cmd *cobra.Command, withJSON bool) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Search term")
	keys := make([]string, 0, len(f.filters))
	for k := range f.filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Flags().StringVar(f.filters[k], k, "", "Filter by "+k+" (\"all\" for no filter)")
	}
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort column")
	cmd.Flags().StringVar(&f.order, "order", "asc", "Sort order (asc|desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&f.perPage, "per-page", listview.DefaultPageSize, "Rows per page")
	if withJSON {
		cmd.Flags().BoolVarP(&f.asJSON, "json", "J", false, "Output as JSON")
	}
}

// query applies the flags on top of base.
func (f *listFlags) query(base listview.Query) (listview.Query, error) {
	q := base.Clone()
	if f.perPage > 0 {
		q.SetPageSize(f.perPage)
	}
	q.SetSearch(f.search)
	for k, v := range f.filters {
		if *v != "" {
			q.SetFilter(k, *v)
		}
	}
	if f.sortBy != "" {
		order, err := parseOrder(f.order)
		if err != nil {
			return q, err
		}
		q.SetSort(f.sortBy, order)
	}
	q.SetPage(f.page)
	return q, nil
}

func parseOrder(s string) (listview.SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return listview.SortAsc, nil
	case "desc":
		return listview.SortDesc, nil
	}
	return listview.SortNone, fmt.Errorf("invalid sort order %q, use asc or desc", s)
}

// collectLimit caps the rows read when a filter has to be applied locally
// across every server page.
const collectLimit = 5000

// fetchView runs one controller load and returns the derived page. When the
// view filters locally on top of server paging, the requested page is cut
// from the whole filtered set instead.
func fetchView[T any](ctx context.Context, store session.Store, desc listview.Descriptor[T], f listview.Fetcher[T], q listview.Query) (listview.Page[T], error) {
	if !desc.LocalPaging && desc.LocalFiltering(q) {
		wide := q.Clone()
		wide.PageSize = listview.MaxPageSize
		items, err := listview.Collect(ctx, f, wide, collectLimit)
		if err != nil {
			return listview.Page[T]{}, handleAPIError(store, err)
		}
		return desc.DeriveAll(items, q), nil
	}
	c := listview.New(desc, f, listview.WithSession[T](store), listview.WithQuery[T](q))
	defer c.Close()
	if err := c.Refresh(ctx); err != nil {
		return listview.Page[T]{}, handleAPIError(nil, err)
	}
	return c.Snapshot().View, nil
}

// browser is the interactive loop around one controller. Renders happen when
// a fetch settles, including fetches started by the debounced search.
type browser[T any] struct {
	ctrl   *listview.Controller[T]
	out    io.Writer
	render func(io.Writer, listview.Page[T])

	// actions handles view-specific commands; it reports whether it knew the verb.
	actions   func(ctx context.Context, in *bufio.Reader, verb string, args []string) (bool, error)
	helpExtra string

	mu         sync.Mutex
	wasLoading bool
	renders    int
	expired    bool
}

func newBrowser[T any](store session.Store, desc listview.Descriptor[T], f listview.Fetcher[T], q listview.Query, out io.Writer, render func(io.Writer, listview.Page[T])) *browser[T] {
	b := &browser[T]{out: &syncWriter{w: out}, render: render}
	b.ctrl = listview.New(desc, f,
		listview.WithSession[T](store),
		listview.WithQuery[T](q),
		listview.WithOnChange[T](b.onChange),
		listview.WithOnUnauthorized[T](func() {
			b.mu.Lock()
			b.expired = true
			b.mu.Unlock()
		}),
	)
	return b
}

func (b *browser[T]) onChange(s listview.Snapshot[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	settled := b.wasLoading && !s.Loading
	b.wasLoading = s.Loading
	if settled {
		b.draw(s)
	}
}

// draw expects b.mu held.
func (b *browser[T]) draw(s listview.Snapshot[T]) {
	b.renders++
	fmt.Fprintln(b.out)
	if s.Err != nil {
		fmt.Fprintf(b.out, "Error: %s\n", domain.UserMessage(s.Err, "Failed to load data"))
		return
	}
	b.render(b.out, s.View)
	fmt.Fprintln(b.out, describeQuery(s.Query))
}

func (b *browser[T]) redraw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draw(b.ctrl.Snapshot())
}

func (b *browser[T]) renderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

func (b *browser[T]) sessionExpired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expired
}

// Run reads commands from in until "q" or EOF.
func (b *browser[T]) Run(ctx context.Context, in io.Reader) error {
	defer b.ctrl.Close()
	r := bufio.NewReader(in)
	if err := b.ctrl.Refresh(ctx); err != nil && domain.IsUnauthorized(err) {
		return handleAPIError(nil, err)
	}
	for {
		if b.sessionExpired() {
			return handleAPIError(nil, domain.ErrUnauthorized)
		}
		line, err := prompt(r, b.out, "> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		quit, err := b.exec(ctx, r, line)
		if err != nil {
			fmt.Fprintf(b.out, "Error: %s\n", domain.UserMessage(err, err.Error()))
		}
		if quit {
			return nil
		}
	}
}

func (b *browser[T]) exec(ctx context.Context, r *bufio.Reader, line string) (bool, error) {
	if strings.HasPrefix(line, "/") {
		// debounced like typing in a search box; the fetch renders when it lands
		b.ctrl.SetSearchInput(strings.TrimSpace(line[1:]))
		return false, nil
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]
	before := b.renderCount()
	var err error
	switch verb {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		b.help()
		return false, nil
	case "n", "next":
		err = b.ctrl.NextPage(ctx)
	case "p", "prev":
		err = b.ctrl.PrevPage(ctx)
	case "page":
		n, perr := intArg(args, 0, "page")
		if perr != nil {
			return false, perr
		}
		err = b.ctrl.SetPage(ctx, n)
	case "size":
		n, perr := intArg(args, 0, "size")
		if perr != nil {
			return false, perr
		}
		err = b.ctrl.SetPageSize(ctx, n)
	case "search":
		err = b.ctrl.SetSearch(ctx, strings.Join(args, " "))
	case "sort":
		if len(args) == 0 {
			return false, errors.New("usage: sort <column>")
		}
		err = b.ctrl.ToggleSort(ctx, args[0])
	case "filter":
		if len(args) != 2 {
			return false, errors.New("usage: filter <key> <value|all>")
		}
		err = b.ctrl.SetFilter(ctx, args[0], args[1])
	case "clear":
		err = b.ctrl.ClearFilters(ctx)
	case "r", "refresh":
		err = b.ctrl.Refresh(ctx)
	default:
		handled := false
		if b.actions != nil {
			handled, err = b.actions(ctx, r, verb, args)
		}
		if !handled {
			return false, fmt.Errorf("unknown command %q, type help", verb)
		}
	}
	if err != nil && !domain.IsUnauthorized(err) {
		// fetch failures are drawn with the page
		if b.renderCount() == before {
			return false, err
		}
		return false, nil
	}
	if b.renderCount() == before {
		b.redraw()
	}
	return false, nil
}

func (b *browser[T]) help() {
	fmt.Fprint(b.out, `Commands:
  /text            search (applied after a short pause)
  search text      search now
  filter key val   set a filter, "all" to drop it
  sort col         cycle sort on a column (asc, desc, none)
  n, p, page N     paging
  size N           rows per page
  clear            drop search, filters and sort
  r                reload
  q                quit
`)
	if b.helpExtra != "" {
		fmt.Fprint(b.out, b.helpExtra)
	}
}

func describeQuery(q listview.Query) string {
	active := q.ActiveFilters()
	if len(active) == 0 {
		return "(no filters)"
	}
	return "(" + strings.Join(active, ", ") + ")"
}

// syncWriter serialises writes from the prompt loop and from renders fired by
// the debounced search.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func intArg(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, args[i])
	}
	return n, nil
}

func int64Arg(args []string, i int, name string) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, args[i])
	}
	return n, nil
}
