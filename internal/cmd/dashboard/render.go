package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"github.com/louisbranch/royaltydesk/internal/dashboard/notification"
	"github.com/louisbranch/royaltydesk/internal/platform/i18n/catalog"
	"github.com/louisbranch/royaltydesk/internal/session"
)

type renderer struct {
	out     io.Writer
	printer *message.Printer
	locale  string
	now     time.Time
}

func newRenderer(out io.Writer, tag language.Tag, now time.Time) *renderer {
	return &renderer{out: out, printer: catalog.Printer(tag), locale: tag.String(), now: now}
}

// reportStatus reports a failed load above the table. Restored rows are still
// rendered; an empty failed collection is an error.
func reportStatus[E collection.Entity](r *renderer, store *collection.Store[E]) error {
	if store.Status() != collection.StatusError {
		return nil
	}
	if store.Len() == 0 {
		return fmt.Errorf("load %s: %w", store.Name(), store.LastError())
	}
	r.printer.Fprintf(r.out, "dashboard.stale", LocalizeError(r.locale, store.LastError()))
	fmt.Fprintln(r.out)
	return nil
}

func (r *renderer) render(s *session.Session, view string, filter string, orderBy string) error {
	switch view {
	case ViewNotifications:
		return r.notifications(s, filter, orderBy)
	case ViewAssets:
		return r.assets(s, filter, orderBy)
	case ViewUsers:
		return r.users(s, filter, orderBy)
	case ViewRoyalties:
		return r.royalties(s, filter, orderBy)
	case ViewWallet:
		return r.wallet(s, filter, orderBy)
	default:
		return fmt.Errorf("unknown view %q", view)
	}
}

func (r *renderer) money(cents int64) string {
	return r.printer.Sprint(number.Decimal(float64(cents)/100, number.Scale(2)))
}

func (r *renderer) title(key string, args ...any) {
	r.printer.Fprintf(r.out, key, args...)
	fmt.Fprintln(r.out)
}

func (r *renderer) table(header string, rows [][]string) error {
	if len(rows) == 0 {
		r.title("dashboard.empty")
		return nil
	}
	w := tabwriter.NewWriter(r.out, 2, 0, 3, ' ', 0)
	fmt.Fprintln(w, header)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (r *renderer) notifications(s *session.Session, filter string, orderBy string) error {
	inbox := s.Inbox()
	if err := reportStatus(r, inbox.Store()); err != nil {
		return err
	}
	r.title("dashboard.notifications.title", inbox.Unread())
	const header = "ID\tTYPE\tTITLE\tSOURCE\tSTATE"

	// A filter or order asks for a flat list; otherwise group by day.
	if filter != "" || orderBy != "" {
		items, err := inbox.View(filter, orderBy)
		if err != nil {
			return err
		}
		return r.table(header, notificationRows(items))
	}
	groups := inbox.Groups(r.now)
	if groups.Len() == 0 {
		r.title("dashboard.empty")
		return nil
	}
	for _, g := range []struct {
		key string
		ids []collection.ID
	}{
		{"dashboard.group.today", groups.Today},
		{"dashboard.group.yesterday", groups.Yesterday},
		{"dashboard.group.older", groups.Older},
	} {
		if len(g.ids) == 0 {
			continue
		}
		fmt.Fprintln(r.out)
		r.title(g.key)
		if err := r.table(header, notificationRows(inbox.Store().Resolve(g.ids))); err != nil {
			return err
		}
	}
	return nil
}

func notificationRows(items []notification.Notification) [][]string {
	rows := make([][]string, 0, len(items))
	for _, n := range items {
		state := "unread"
		if n.Read() {
			state = "read"
		}
		rows = append(rows, []string{fmt.Sprint(n.ID), n.Type, n.Title, n.Source, state})
	}
	return rows
}

func (r *renderer) assets(s *session.Session, filter string, orderBy string) error {
	grid := s.Grid()
	if err := reportStatus(r, grid.Store()); err != nil {
		return err
	}
	items, err := grid.View(filter, orderBy)
	if err != nil {
		return err
	}
	r.title("dashboard.assets.title")
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{
			fmt.Sprint(a.ID), a.Title, a.Artist, a.Type, a.Genre, a.Status,
			r.printer.Sprintf("%.1f%%", a.RoyaltyShare), r.money(a.PriceCents),
		})
	}
	return r.table("ID\tTITLE\tARTIST\tTYPE\tGENRE\tSTATUS\tSHARE\tPRICE", rows)
}

func (r *renderer) users(s *session.Session, filter string, orderBy string) error {
	manager, err := s.Users()
	if err != nil {
		return err
	}
	if err := reportStatus(r, manager.Store()); err != nil {
		return err
	}
	items, err := manager.View(filter, orderBy)
	if err != nil {
		return err
	}
	r.title("dashboard.users.title")
	rows := make([][]string, 0, len(items))
	for _, u := range items {
		rows = append(rows, []string{fmt.Sprint(u.ID), u.Name, u.Email, u.Role, u.Status, r.money(u.BalanceCents)})
	}
	return r.table("ID\tNAME\tEMAIL\tROLE\tSTATUS\tBALANCE", rows)
}

func (r *renderer) royalties(s *session.Session, filter string, orderBy string) error {
	ledger, err := s.Royalties()
	if err != nil {
		return err
	}
	if err := reportStatus(r, ledger.Store()); err != nil {
		return err
	}
	items, err := ledger.View(filter, orderBy)
	if err != nil {
		return err
	}
	r.title("dashboard.royalties.title")
	assets := s.Grid().Store()
	rows := make([][]string, 0, len(items))
	for _, rec := range items {
		title := fmt.Sprintf("#%d", rec.AssetID)
		if a, ok := ledger.Asset(rec.ID, assets); ok {
			title = a.Title
		}
		rows = append(rows, []string{fmt.Sprint(rec.ID), title, rec.Period, r.money(rec.AmountCents), rec.Status})
	}
	return r.table("ID\tASSET\tPERIOD\tAMOUNT\tSTATUS", rows)
}

func (r *renderer) wallet(s *session.Session, filter string, orderBy string) error {
	w := s.Wallet()
	if err := reportStatus(r, w.Store()); err != nil {
		return err
	}
	items, err := w.View(filter, orderBy)
	if err != nil {
		return err
	}
	r.title("dashboard.wallet.title")
	r.title("dashboard.wallet.balance", r.money(w.Balance()))
	rows := make([][]string, 0, len(items))
	for _, tx := range items {
		method := tx.Method
		if method == "" {
			method = tx.Network
		}
		created := ""
		if !tx.CreatedAt.IsZero() {
			created = tx.CreatedAt.Format(time.DateOnly)
		}
		rows = append(rows, []string{fmt.Sprint(tx.ID), string(tx.Kind), r.money(tx.AmountCents), method, tx.Status, created})
	}
	return r.table("ID\tKIND\tAMOUNT\tMETHOD\tSTATUS\tCREATED", rows)
}
