package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/me/storecms/internal/service"
	"github.com/me/storecms/pkg/model"
)

// activeFilter is the tri-state --active flag: unset lists everything.
type activeFilter struct {
	value bool
}

func (a *activeFilter) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.value, "active", true, "Only active (true) or inactive (false) entries; omit for all")
}

func (a *activeFilter) apply(cmd *cobra.Command, params map[string]any) {
	if cmd.Flags().Changed("active") {
		params["is_active"] = a.value
	}
}

func newClientsCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:   "clients",
		Short: "Manage the client logos of the landing page",
	})

	var (
		lf     listFlags
		active activeFilter
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := lf.params()
			active.apply(cmd, params)
			ctrl := service.NewClients(deps()).List(service.ListOptions{
				Page:   lf.zeroBasedPage(),
				Limit:  lf.limit,
				Params: params,
			})
			return showList(cmd, ctrl, "No clients found.", func(w io.Writer, items []model.Client) {
				fmt.Fprintf(w, "%-6s  %-28s  %-6s  %-6s  %s\n", "ID", "NAME", "ORDER", "ACTIVE", "LOGO")
				for _, c := range items {
					fmt.Fprintf(w, "%-6s  %-28s  %-6d  %-6s  %s\n", c.ID, c.Name, c.Orders, yesNo(c.IsActive), c.Logo)
				}
			})
		},
	}
	lf.register(list)
	active.register(list)

	var in model.ClientInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" || in.Logo == "" {
				return fmt.Errorf("--name and --logo are required")
			}
			c, err := service.NewClients(deps()).Create(cmd.Context(), in)
			if err != nil {
				return callErr("create client", err)
			}
			return result(cmd, c, "Created client %s (%s)", c.ID, c.Name)
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "Client name")
	create.Flags().StringVar(&in.Logo, "logo", "", "Logo URL")
	create.Flags().IntVar(&in.Orders, "order", 0, "Display order")
	create.Flags().BoolVar(&in.IsActive, "active", true, "Show on the landing page")

	var logo string
	setLogo := &cobra.Command{
		Use:   "set-logo <id>",
		Short: "Replace a client logo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := service.NewClients(deps()).UpdateLogo(cmd.Context(), id, logo)
			if err != nil {
				return callErr("update client logo", err)
			}
			return result(cmd, c, "Updated logo of client %s", c.ID)
		},
	}
	setLogo.Flags().StringVar(&logo, "logo", "", "Logo URL")
	setLogo.MarkFlagRequired("logo")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := service.NewClients(deps()).Delete(cmd.Context(), id); err != nil {
				return callErr("delete client", err)
			}
			return result(cmd, map[string]any{"deleted": id}, "Deleted client %d", id)
		},
	}

	cmd.AddCommand(list, create, setLogo, del)
	return cmd
}

func newBenefitsCmd() *cobra.Command {
	cmd := needsAPI(&cobra.Command{
		Use:   "benefits",
		Short: "Manage the landing-page benefits and FAQ",
	})

	var (
		lf     listFlags
		active activeFilter
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List benefits",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := lf.params()
			active.apply(cmd, params)
			ctrl := service.NewBenefits(deps()).List(service.ListOptions{
				Page:   lf.zeroBasedPage(),
				Limit:  lf.limit,
				Params: params,
			})
			return showList(cmd, ctrl, "No benefits found.", func(w io.Writer, items []model.Benefit) {
				fmt.Fprintf(w, "%-6s  %-28s  %-6s  %-6s  %s\n", "ID", "NAME", "ORDER", "ACTIVE", "QUESTION")
				for _, b := range items {
					fmt.Fprintf(w, "%-6s  %-28s  %-6d  %-6s  %s\n", b.ID, b.Name, b.Orders, yesNo(b.IsActive), b.Question)
				}
			})
		},
	}
	lf.register(list)
	active.register(list)

	var in model.BenefitInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a benefit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			b, err := service.NewBenefits(deps()).Create(cmd.Context(), in)
			if err != nil {
				return callErr("create benefit", err)
			}
			return result(cmd, b, "Created benefit %s (%s)", b.ID, b.Name)
		},
	}
	f := create.Flags()
	f.StringVar(&in.Name, "name", "", "Benefit name")
	f.StringVar(&in.Logo, "logo", "", "Icon URL")
	f.StringVar(&in.Question, "question", "", "FAQ question")
	f.StringVar(&in.Answer, "answer", "", "FAQ answer")
	f.IntVar(&in.Orders, "order", 0, "Display order")
	f.BoolVar(&in.IsActive, "active", true, "Show on the landing page")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a benefit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := service.NewBenefits(deps()).Delete(cmd.Context(), id); err != nil {
				return callErr("delete benefit", err)
			}
			return result(cmd, map[string]any{"deleted": id}, "Deleted benefit %d", id)
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
