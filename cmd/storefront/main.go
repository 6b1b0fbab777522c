package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"storefront/internal/api"
	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/payment"
	authsvc "storefront/internal/service/auth"
	invoicesvc "storefront/internal/service/invoice"
	productsvc "storefront/internal/service/product"
	reportsvc "storefront/internal/service/report"
	usersvc "storefront/internal/service/user"
	"storefront/internal/session"
	"storefront/internal/storage"
)

type app struct {
	cfg      config.Config
	logger   *log.Logger
	sess     *session.Manager
	cart     *cart.Engine
	auth     *authsvc.Service
	products *productsvc.Service
	invoices *invoicesvc.Service
	reports  *reportsvc.Service
	users    *usersvc.Service
}

func main() {
	cmd := flag.String("cmd", "cart", "Command: login|logout|register|me|scan|search|recommend|add|cart|remove|set-qty|checkout|checkout-now|history|kpis|stock|users")
	barcode := flag.String("barcode", "", "Product barcode (scan/add/stock)")
	query := flag.String("q", "", "Search query")
	productID := flag.Int64("id", 0, "Product id (remove/set-qty)")
	qty := flag.Int("qty", 1, "Quantity (add/set-qty/stock)")
	email := flag.String("email", "", "Account email (login)")
	password := flag.String("password", "", "Account password (login)")
	price := flag.Float64("price", 0, "Price in euros (stock)")
	limit := flag.Int("limit", 5, "Result limit (recommend)")
	firstName := flag.String("first-name", "", "First name (register)")
	lastName := flag.String("last-name", "", "Last name (register)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open storage: %v", err)
	}
	if pg, ok := store.(*storage.Postgres); ok {
		defer pg.Close()
	}

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	authService := authsvc.New(client)
	sess := session.NewManager(store, authService, logger)
	client.SetTokenSource(sess)
	client.OnUnauthorized(func(ctx context.Context) { sess.SignOut(ctx) })

	a := &app{
		cfg:      cfg,
		logger:   logger,
		sess:     sess,
		cart:     cart.New(ctx, store, logger),
		auth:     authService,
		products: productsvc.New(client, cache.New(store), cfg.CacheFallbackAge, logger),
		invoices: invoicesvc.New(client),
		reports:  reportsvc.New(client),
		users:    usersvc.New(client),
	}

	// Session restore precedes every command, like the splash screen does on
	// the mobile app.
	sess.Bootstrap(ctx)
	if target, ok := session.ComputeRedirect(currentGroup(*cmd), sess.State()); ok {
		logger.Printf("ui would redirect to %s", target)
	}

	if err := a.run(ctx, *cmd, runArgs{
		barcode:   *barcode,
		query:     *query,
		id:        *productID,
		qty:       *qty,
		email:     *email,
		password:  *password,
		price:     *price,
		limit:     *limit,
		firstName: *firstName,
		lastName:  *lastName,
	}); err != nil {
		logger.Fatalf("%s: %v", *cmd, err)
	}
}

type runArgs struct {
	barcode   string
	query     string
	id        int64
	qty       int
	email     string
	password  string
	price     float64
	limit     int
	firstName string
	lastName  string
}

// currentGroup maps the requested command to the screen area it belongs to,
// so the redirect guard sees the same route context the UI would.
func currentGroup(cmd string) session.RouteGroup {
	switch cmd {
	case "login", "register":
		return session.GroupAuth
	default:
		return session.GroupTabs
	}
}

func (a *app) run(ctx context.Context, cmd string, args runArgs) error {
	switch cmd {
	case "login":
		res, err := a.auth.Login(ctx, args.email, args.password)
		if err != nil {
			return err
		}
		if err := a.sess.SignIn(ctx, res.AccessToken, nil); err != nil {
			return err
		}
		target, _ := session.ComputeRedirect(session.GroupAuth, a.sess.State())
		fmt.Printf("signed in as %s, landing on %s\n", res.Role, target)
		return nil

	case "register":
		res, err := a.auth.Register(ctx, authsvc.RegisterInput{
			FirstName: args.firstName,
			LastName:  args.lastName,
			Email:     args.email,
			Password:  args.password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("account #%d created, sign in to continue\n", res.ID)
		return nil

	case "logout":
		a.sess.SignOut(ctx)
		fmt.Println("signed out")
		return nil

	case "me":
		state := a.sess.State()
		if !state.Authenticated() {
			return errors.New("not signed in")
		}
		u := state.User
		fmt.Printf("%s %s <%s> role=%s\n", u.FirstName, u.LastName, u.Email, u.Role)
		return nil

	case "scan":
		p, stale, err := a.products.Scan(ctx, args.barcode)
		if err != nil {
			return err
		}
		printProduct(p, stale)
		return nil

	case "search":
		items, stale, err := a.products.Search(ctx, args.query)
		if err != nil {
			return err
		}
		for _, p := range items {
			printProduct(p, stale)
		}
		return nil

	case "recommend":
		items, stale, err := a.products.Recommendations(ctx, args.limit)
		if err != nil {
			return err
		}
		for _, p := range items {
			printProduct(p, stale)
		}
		return nil

	case "add":
		p, stale, err := a.products.Scan(ctx, args.barcode)
		if err != nil {
			return err
		}
		if stale {
			a.logger.Printf("using cached product data for %s", args.barcode)
		}
		if !a.cart.Add(ctx, p, args.qty) {
			return fmt.Errorf("insufficient stock for %q", p.Name)
		}
		fmt.Printf("added %dx %s, total %.2f\n", args.qty, p.Name, domain.Euros(a.cart.TotalCents()))
		return nil

	case "cart":
		for _, line := range a.cart.Items() {
			fmt.Printf("#%d %s x%d = %.2f\n", line.ProductID, line.Name, line.Quantity, domain.Euros(line.LineTotalCents()))
		}
		fmt.Printf("total: %.2f\n", domain.Euros(a.cart.TotalCents()))
		return nil

	case "remove":
		a.cart.Remove(ctx, args.id)
		return nil

	case "set-qty":
		a.cart.SetQuantity(ctx, args.id, args.qty)
		fmt.Printf("total: %.2f\n", domain.Euros(a.cart.TotalCents()))
		return nil

	case "checkout":
		return a.checkout(ctx)

	case "checkout-now":
		if err := a.invoices.Checkout(ctx, a.cart.CheckoutItems()); err != nil {
			return err
		}
		a.cart.Clear(ctx)
		fmt.Println("order confirmed")
		return nil

	case "history":
		invoices, err := a.invoices.History(ctx)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			fmt.Printf("#%d %s total %.2f (%d items)\n", inv.ID, inv.Date.Format("2006-01-02"), inv.TotalPrice, len(inv.Items))
		}
		return nil

	case "kpis":
		if !session.Authorization(a.sess.State().Role()).CanViewReports {
			return errors.New("manager role required")
		}
		r, err := a.reports.KPIs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("revenue %.2f over %d transactions, avg basket %.2f\n", r.TotalRevenue, r.TotalTransactions, r.AverageBasket)
		fmt.Printf("stock rupture %.1f%%, loyalty %.1f%%\n", r.StockRuptureRate, r.CustomerLoyaltyRate)
		return nil

	case "stock":
		if !session.Authorization(a.sess.State().Role()).CanEditStock {
			return errors.New("manager role required")
		}
		return a.products.UpdateStock(ctx, args.barcode, domain.Cents(args.price), args.qty)

	case "users":
		if !session.Authorization(a.sess.State().Role()).CanManageUsers {
			return errors.New("manager role required")
		}
		users, err := a.users.List(ctx, args.query, "")
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("#%d %s %s <%s> %s\n", u.ID, u.FirstName, u.LastName, u.Email, u.Role)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// checkout runs the two-phase flow: create the pending order, hand the buyer
// the approval URL, and wait for the payment page to redirect back to the
// local listener, which captures exactly once.
func (a *app) checkout(ctx context.Context) error {
	state := a.sess.State()
	if !state.Authenticated() {
		return errors.New("sign in before checkout")
	}
	items := a.cart.CheckoutItems()
	billing := domain.Billing{
		Address: state.User.Address,
		ZipCode: state.User.ZipCode,
		City:    state.User.City,
		Country: state.User.Country,
	}

	order, err := a.invoices.CreateOrder(ctx, items, billing)
	if err != nil {
		return err
	}

	listener := payment.New(a.cfg.PaymentListenAddr, a.logger, func(ctx context.Context, paymentID string) error {
		return a.invoices.Capture(ctx, order, paymentID)
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := listener.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := listener.Shutdown(shutdownCtx); err != nil {
			a.logger.Printf("listener shutdown: %v", err)
		}
	}()

	fmt.Printf("approve the payment at:\n  %s\n", order.ApprovalURL)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case res := <-listener.Results():
		if res.Canceled {
			return errors.New("payment canceled")
		}
		if res.Err != nil {
			return res.Err
		}
		a.cart.Clear(ctx)
		fmt.Println("payment captured, order confirmed")
		return nil
	case err := <-serverErr:
		return err
	case sig := <-stopCh:
		return fmt.Errorf("interrupted by %s before payment completed", sig)
	}
}

func printProduct(p domain.Product, stale bool) {
	suffix := ""
	if stale {
		suffix = " (cached)"
	}
	stock := "unbounded"
	if p.AvailableQuantity != nil {
		stock = fmt.Sprintf("%d in stock", *p.AvailableQuantity)
	}
	fmt.Printf("#%d %s %.2f, %s%s\n", p.ID, p.Name, p.Price, stock, suffix)
}
