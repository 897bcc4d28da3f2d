package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"spincrm/internal/app"
	"spincrm/internal/domain/auth"
	"spincrm/internal/domain/client"
	"spincrm/internal/domain/lead"
)

const demoPassword = "spincrm123"

var demoUsers = []auth.CreateUserInput{
	{Email: "admin@spincrm.local", FullName: "Aidana Admin", Gender: "Female", Role: auth.RoleAdmin},
	{Email: "bekzat@spincrm.local", FullName: "Bekzat Nurlanov", Gender: "Male", Role: auth.RoleMember},
	{Email: "dina@spincrm.local", FullName: "Dina Seitova", Gender: "Female", Role: auth.RoleMember},
}

func newSeedCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo users, clients and leads",
		Long:  "Creates demo accounts (password " + demoPassword + ") and, when the collections are empty, sample clients and leads. Safe to run twice.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if err := a.Migrate(); err != nil {
				return err
			}
			sess, err := seedUsers(cmd.Context(), a)
			if err != nil {
				return err
			}
			nClients, err := seedClients(cmd.Context(), a, sess)
			if err != nil {
				return err
			}
			nLeads, err := seedLeads(cmd.Context(), a, sess)
			if err != nil {
				return err
			}
			o.printf("seed completed: users=%d clients=%d leads=%d password=%s\n", len(demoUsers), nClients, nLeads, demoPassword)
			return nil
		},
	}
}

// seedUsers creates the demo accounts and returns the admin session used as
// creator of the sample records.
func seedUsers(ctx context.Context, a *app.App) (*auth.Session, error) {
	for _, in := range demoUsers {
		in.Password = demoPassword
		if _, err := a.Sessions.CreateUser(ctx, in); err != nil {
			if skipExisting(err) {
				log.Printf("seed user exists email=%s", in.Email)
				continue
			}
			return nil, fmt.Errorf("create %s: %w", in.Email, err)
		}
	}

	res, err := a.Sessions.SignIn(ctx, demoUsers[0].Email, demoPassword)
	if err != nil {
		return nil, fmt.Errorf("sign in as %s: %w", demoUsers[0].Email, err)
	}
	return res.Session, nil
}

func seedClients(ctx context.Context, a *app.App, sess *auth.Session) (int, error) {
	existing, err := a.Clients.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	soon := time.Now().AddDate(0, 0, 2)
	later := time.Now().AddDate(0, 1, 0)
	samples := []struct {
		req      client.CreateClientRequest
		progress int
		done     bool
	}{
		{
			req: client.CreateClientRequest{
				ClientName: "Acme", CompanyName: "Acme LLC", Deadline: &soon,
				WorkDetails: &client.WorkDetails{Software: client.SoftwareWork{
					Selected: true, Details: "Landing page and booking app",
					Subtypes: []client.SoftwareSubtype{client.SubtypeWebsite, client.SubtypeMobile},
				}},
			},
			progress: 40,
		},
		{
			req: client.CreateClientRequest{
				ClientName: "Nomad Coffee", Deadline: &later,
				WorkDetails: &client.WorkDetails{Design: client.CategoryWork{Selected: true, Details: "Brand refresh"}},
			},
			progress: 100,
			done:     true,
		},
		{
			req: client.CreateClientRequest{
				ClientName: "Steppe Films",
				WorkDetails: &client.WorkDetails{Editing: client.CategoryWork{Selected: true, Details: "Promo cut"}},
			},
		},
	}

	for _, s := range samples {
		c, err := a.Clients.Create(ctx, sess, s.req)
		if err != nil {
			return 0, err
		}
		if s.progress > 0 {
			if c, err = a.Clients.SetProgress(ctx, c.ID, s.progress); err != nil {
				return 0, err
			}
		}
		if s.done {
			if _, err = a.Clients.ToggleStatus(ctx, c.ID); err != nil {
				return 0, err
			}
		}
	}
	return len(samples), nil
}

func seedLeads(ctx context.Context, a *app.App, sess *auth.Session) (int, error) {
	existing, err := a.Leads.List(ctx, lead.FilterAll)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := []lead.CreateLeadRequest{
		{Name: "Bob", Phone: "+7 701 555 0101", Company: "Bob's Garage", Email: "bob@example.com"},
		{Name: "Aruzhan", Phone: "+7 702 555 0102", Address: "Abay Ave 10"},
		{Name: "Timur", Phone: "+7 705 555 0103"},
	}
	var created []*lead.Lead
	for _, req := range samples {
		l, err := a.Leads.Create(ctx, sess, req)
		if err != nil {
			return 0, err
		}
		created = append(created, l)
	}

	service := "Website"
	price := "450000"
	if _, err := a.Leads.Accept(ctx, created[0].ID, lead.AcceptRequest{Service: &service, Price: &price}); err != nil {
		return 0, err
	}
	callback := time.Now().AddDate(0, 0, 3)
	at := "15:00"
	if _, err := a.Leads.Defer(ctx, created[1].ID, lead.DeferRequest{CallbackDate: &callback, CallbackTime: &at}); err != nil {
		return 0, err
	}
	return len(samples), nil
}
