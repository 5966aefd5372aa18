package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gamegrid/internal/core"
)

// pageStatus is the JSON form of one page in "gridctl pages".
type pageStatus struct {
	core.PageInfo
	Status []core.TabStatus `json:"status"`
}

// gridOutput is the JSON form of "gridctl grid".
type gridOutput struct {
	Page string `json:"page"`
	Tab  string `json:"tab"`
	core.GridPayload
}

func newPagesCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List catalog pages and whether their tabs loaded",
		Example: `  gridctl pages
  gridctl pages --data-dir ./assets -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, cat, err := st.buildAll(cmd.Context())
			if reg == nil {
				return err
			}

			pages := make([]pageStatus, 0, len(cat.Pages))
			for _, info := range reg.Pages() {
				pages = append(pages, pageStatus{PageInfo: info, Status: reg.Status(info.Key)})
			}

			w := cmd.OutOrStdout()
			if st.output == OutputJSON {
				if encErr := writeJSON(w, pages); encErr != nil {
					return encErr
				}
			} else {
				renderPages(w, pages)
			}
			// Still fail when nothing loaded, after showing why.
			return err
		},
	}
}

func newGridCommand(st *state) *cobra.Command {
	var tab string
	var limit int

	cmd := &cobra.Command{
		Use:   "grid <page>",
		Short: "Print the normalized grid of a tab",
		Example: `  gridctl grid skill-damage --tab lune
  gridctl grid xenosaga --tab ep2 --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := st.lookup(cmd.Context(), args[0], tab)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if st.output == OutputJSON {
				return writeJSON(w, gridOutput{Page: t.Page.Key, Tab: t.ID, GridPayload: t.Payload})
			}
			renderGrid(w, t, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "", "tab ID (default: the page's first tab)")
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many rows (0 prints all)")
	return cmd
}

func newRowCommand(st *state) *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "row <page> <index>",
		Short: "Print the detail view of one row",
		Long: `Print the detail view a grid shows when a row is clicked: the identity
value as title, then every other field. Elements and Yes/No values are
coloured on terminals.`,
		Example: `  gridctl row xenosaga 0 --tab ep1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q is not a row index", core.ErrRowNotFound, args[1])
			}

			t, err := st.lookup(cmd.Context(), args[0], tab)
			if err != nil {
				return err
			}
			detail, err := t.Detail(index)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if st.output == OutputJSON {
				return writeJSON(w, detail)
			}
			renderDetail(w, detail)
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "", "tab ID (default: the page's first tab)")
	return cmd
}

func newColumnsCommand(st *state) *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:     "columns <page>",
		Short:   "Print the inferred column definitions of a tab",
		Example: `  gridctl columns skill-damage --tab maelle`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := st.lookup(cmd.Context(), args[0], tab)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if st.output == OutputJSON {
				return writeJSON(w, t.Payload.ColumnDefs)
			}
			renderColumns(w, t.Payload.ColumnDefs)
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "", "tab ID (default: the page's first tab)")
	return cmd
}

func tabIDs(info core.PageInfo) string {
	ids := make([]string, len(info.Tabs))
	for i, t := range info.Tabs {
		ids[i] = t.ID
	}
	return strings.Join(ids, ", ")
}
