// cmd/storefront/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/your-org/ecommerce-storefront/internal/api"
	"github.com/your-org/ecommerce-storefront/internal/checkout"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/address"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/domain/payment"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logging"
	"github.com/your-org/ecommerce-storefront/internal/session"
)

const usage = `Usage: storefront <command> [arguments]

Commands:
  register      create an account and sign in
  login         sign in and persist the session token
  logout        clear the persisted session
  whoami        show the signed-in identity
  products      list products (optionally by -category)
  product       show one product by id
  cart          show the cart
  cart-add      add a product (-product, -qty)
  cart-set      set a line quantity (-product, -qty)
  cart-rm       remove a line (-product)
  cart-clear    empty the cart
  addresses     list saved addresses
  addr-add      save a new address
  addr-update   update an address (-id plus fields)
  addr-rm       delete an address (-id)
  addr-default  mark an address as default (-id)
  checkout      run the checkout flow
  orders        list your orders
  order         show one order (-id)
  admin-orders  list every order (admin)
  admin-status  update order status (admin; -id, -status, -payment-status)
  admin-rm      delete an order (admin; -id)
  theme         show or set the UI theme preference
`

// app bundles the shared wiring every subcommand needs.
type app struct {
	cfg      *config.Config
	sessions *session.Store
	api      *api.Client
	catalog  *catalog.Client
	cart     *cart.Client
	address  *address.Client
	orders   *order.Client
	payments *payment.Client
}

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg)

	sessions := session.NewStore(cfg.Session.StatePath)
	if err := sessions.Load(); err != nil {
		log.Fatalf("Failed to load session state: %v", err)
	}

	apiClient := api.NewClient(cfg, sessions, logger)
	a := &app{
		cfg:      cfg,
		sessions: sessions,
		api:      apiClient,
		catalog:  catalog.NewClient(apiClient),
		cart:     cart.NewClient(apiClient),
		address:  address.NewClient(apiClient),
		orders:   order.NewClient(apiClient),
		payments: payment.NewClient(cfg, apiClient, logger),
	}

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	var cmdErr error
	switch cmd {
	case "register":
		cmdErr = a.register(ctx, args)
	case "login":
		cmdErr = a.login(ctx, args)
	case "logout":
		cmdErr = a.sessions.Clear()
	case "whoami":
		cmdErr = a.whoami()
	case "products":
		cmdErr = a.listProducts(ctx, args)
	case "product":
		cmdErr = a.showProduct(ctx, args)
	case "cart":
		cmdErr = a.showCart(ctx)
	case "cart-add":
		cmdErr = a.cartAdd(ctx, args)
	case "cart-set":
		cmdErr = a.cartSet(ctx, args)
	case "cart-rm":
		cmdErr = a.cartRemove(ctx, args)
	case "cart-clear":
		cmdErr = a.cartClear(ctx)
	case "addresses":
		cmdErr = a.listAddresses(ctx)
	case "addr-add":
		cmdErr = a.addAddress(ctx, args)
	case "addr-update":
		cmdErr = a.updateAddress(ctx, args)
	case "addr-rm":
		cmdErr = a.removeAddress(ctx, args)
	case "addr-default":
		cmdErr = a.defaultAddress(ctx, args)
	case "checkout":
		cmdErr = a.checkout(ctx, args)
	case "orders":
		cmdErr = a.listOrders(ctx)
	case "order":
		cmdErr = a.showOrder(ctx, args)
	case "admin-orders":
		cmdErr = a.adminOrders(ctx)
	case "admin-status":
		cmdErr = a.adminStatus(ctx, args)
	case "admin-rm":
		cmdErr = a.adminRemove(ctx, args)
	case "theme":
		cmdErr = a.theme(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		if errors.Is(cmdErr, session.ErrUnauthenticated) {
			log.Fatal("Not signed in. Run: storefront login -email <email> -password <password>")
		}
		log.Fatalf("Error: %v", cmdErr)
	}
}

type authResponse struct {
	Token string `json:"token"`
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", "buyer", "buyer or seller")
	fs.Parse(args)

	var resp authResponse
	err := a.api.Do(ctx, "POST", "/auth/register", map[string]string{
		"username": *username,
		"email":    *email,
		"password": *password,
		"role":     *role,
	}, &resp)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(resp.Token); err != nil {
		return err
	}
	fmt.Println("Registered and signed in.")
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	var resp authResponse
	err := a.api.Do(ctx, "POST", "/auth/login", map[string]string{
		"email":    *email,
		"password": *password,
	}, &resp)
	if err != nil {
		return err
	}
	if err := a.sessions.Save(resp.Token); err != nil {
		return err
	}
	fmt.Println("Signed in.")
	return nil
}

func (a *app) whoami() error {
	sess, err := a.sessions.Current()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) role=%s\n", sess.Identity.Username, sess.Identity.UserID, sess.Identity.Role)
	return nil
}

func (a *app) listProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	category := fs.String("category", "", "filter by category")
	fs.Parse(args)

	var (
		products []catalog.Product
		err      error
	)
	if *category != "" {
		products, err = a.catalog.ListByCategory(ctx, *category)
	} else {
		products, err = a.catalog.List(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORY\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Title, money(p.Price), p.Category, p.Quantity)
	}
	return w.Flush()
}

func (a *app) showProduct(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: storefront product <id>")
	}
	p, err := a.catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n  price: %s\n  category: %s\n  in stock: %d\n  image: %s\n",
		p.Title, money(p.Price), p.Category, p.Quantity, p.Image())
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	c, err := a.cart.Fetch(ctx)
	if err != nil {
		return err
	}
	printCart(c)
	return nil
}

func (a *app) cartAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	product := fs.String("product", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)

	c, err := a.cart.Add(ctx, *product, *qty)
	if err != nil {
		return err
	}
	printCart(c)
	return nil
}

func (a *app) cartSet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-set", flag.ExitOnError)
	product := fs.String("product", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)

	c, err := a.cart.SetQuantity(ctx, *product, *qty)
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Println("Quantity must be at least 1; cart unchanged.")
		return nil
	}
	printCart(c)
	return nil
}

func (a *app) cartRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-rm", flag.ExitOnError)
	product := fs.String("product", "", "product id")
	fs.Parse(args)

	c, err := a.cart.Remove(ctx, *product)
	if err != nil {
		return err
	}
	printCart(c)
	return nil
}

func (a *app) cartClear(ctx context.Context) error {
	c, err := a.cart.Clear(ctx)
	if err != nil {
		return err
	}
	printCart(c)
	return nil
}

func (a *app) listAddresses(ctx context.Context) error {
	addresses, err := a.address.List(ctx)
	if err != nil {
		return err
	}
	printAddresses(addresses)
	return nil
}

func addressFlags(fs *flag.FlagSet) *address.Form {
	form := &address.Form{}
	fs.StringVar(&form.Label, "label", "", "address label")
	fs.StringVar(&form.Street, "street", "", "street")
	fs.StringVar(&form.City, "city", "", "city")
	fs.StringVar(&form.State, "state", "", "state or region")
	fs.StringVar(&form.Zip, "zip", "", "postal code")
	fs.StringVar(&form.Country, "country", "", "country")
	fs.BoolVar(&form.IsDefault, "default", false, "mark as default")
	return form
}

func (a *app) addAddress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("addr-add", flag.ExitOnError)
	form := addressFlags(fs)
	fs.Parse(args)

	created, err := a.address.Create(ctx, *form)
	if err != nil {
		return err
	}
	fmt.Printf("Saved address %s\n", created.ID)
	return nil
}

func (a *app) updateAddress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("addr-update", flag.ExitOnError)
	id := fs.String("id", "", "address id")
	form := addressFlags(fs)
	fs.Parse(args)

	updated, err := a.address.Update(ctx, *id, *form)
	if err != nil {
		return err
	}
	fmt.Printf("Updated address %s\n", updated.ID)
	return nil
}

func (a *app) removeAddress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("addr-rm", flag.ExitOnError)
	id := fs.String("id", "", "address id")
	fs.Parse(args)

	if err := a.address.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (a *app) defaultAddress(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("addr-default", flag.ExitOnError)
	id := fs.String("id", "", "address id")
	fs.Parse(args)

	addresses, err := a.address.SetDefault(ctx, *id)
	if err != nil {
		return err
	}
	printAddresses(addresses)
	return nil
}

// consoleNotifier surfaces checkout notifications on the terminal, the
// CLI stand-in for toast messages.
type consoleNotifier struct{}

func (consoleNotifier) Success(message string) { fmt.Println("✔ " + message) }
func (consoleNotifier) Error(message string)   { fmt.Fprintln(os.Stderr, "✘ "+message) }
func (consoleNotifier) Info(message string)    { fmt.Println("• " + message) }

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	addressID := fs.String("address", "", "saved address id (default address when omitted)")
	method := fs.String("method", string(order.MethodCOD), `payment method: "COD", "Credit Card", "Debit Card" or "UPI"`)
	cardNumber := fs.String("card", "", "card number (card methods)")
	cardExp := fs.String("exp", "", "card expiry MM/YY")
	cardCVC := fs.String("cvc", "", "card verification code")
	form := addressFlags(fs)
	fs.Parse(args)

	logger := logging.New(a.cfg)
	flow := checkout.NewFlow(a.cart, a.address, a.payments, a.orders, consoleNotifier{}, logger)

	if err := flow.Begin(ctx); err != nil {
		return err
	}

	switch {
	case form.Street != "" || form.City != "" || form.Zip != "":
		if flow.State() == checkout.StateSelectingAddress {
			if err := flow.EnterNewAddress(); err != nil {
				return err
			}
		}
		if err := flow.UseNewAddress(*form); err != nil {
			return err
		}
	case *addressID != "":
		if err := flow.SelectAddress(*addressID); err != nil {
			return err
		}
	case flow.SelectedAddressID() != "":
		// Default address picked up during Begin; confirm it.
		if err := flow.SelectAddress(flow.SelectedAddressID()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("no saved addresses; provide -street, -city and -zip")
	}

	paymentMethod := order.PaymentMethod(*method)
	if err := flow.SelectPayment(paymentMethod); err != nil {
		return err
	}

	var card *payment.CardDetails
	if paymentMethod.RequiresConfirmation() {
		parsed, err := parseCard(*cardNumber, *cardExp, *cardCVC)
		if err != nil {
			return err
		}
		card = parsed
	}

	orderID, err := flow.Submit(ctx, card)
	if err != nil {
		return err
	}
	fmt.Printf("Order placed: %s\n", orderID)
	return a.showOrder(ctx, []string{"-id", orderID})
}

func parseCard(number, exp, cvc string) (*payment.CardDetails, error) {
	if number == "" {
		return nil, fmt.Errorf("card methods need -card, -exp and -cvc")
	}
	parts := strings.SplitN(exp, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expiry must look like MM/YY")
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid expiry month %q", parts[0])
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid expiry year %q", parts[1])
	}
	if year < 100 {
		year += 2000
	}
	return &payment.CardDetails{
		Number:   strings.ReplaceAll(number, " ", ""),
		ExpMonth: strconv.Itoa(month),
		ExpYear:  strconv.Itoa(year),
		CVC:      cvc,
	}, nil
}

func (a *app) listOrders(ctx context.Context) error {
	orders, err := a.orders.ListMine(ctx)
	if err != nil {
		return err
	}
	printOrders(orders)
	return nil
}

func (a *app) showOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)

	o, err := a.orders.GetByID(ctx, *id)
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("order %s not found", *id)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Order %s\n  placed: %s\n  status: %s\n  payment: %s via %s\n",
		o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, o.PaymentStatus, o.PaymentMethod)
	if o.DeliveredAt != nil {
		fmt.Printf("  delivered: %s\n", o.DeliveredAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("  ship to: %s, %s %s\n", o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.Zip)
	for _, item := range o.Items {
		fmt.Printf("  %d x %s @ %s\n", item.Quantity, item.Title, money(item.Price))
	}
	fmt.Printf("  total: %s\n", money(o.TotalAmount))
	return nil
}

func (a *app) adminOrders(ctx context.Context) error {
	orders, err := a.orders.ListAll(ctx)
	if err != nil {
		return err
	}
	printOrders(orders)
	return nil
}

func (a *app) adminStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin-status", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	status := fs.String("status", "", "order status")
	paymentStatus := fs.String("payment-status", "", "payment status")
	fs.Parse(args)

	var update order.StatusUpdate
	if *status != "" {
		s := order.Status(*status)
		update.OrderStatus = &s
	}
	if *paymentStatus != "" {
		p := order.PaymentStatus(*paymentStatus)
		update.PaymentStatus = &p
	}

	updated, err := a.orders.UpdateStatus(ctx, *id, update)
	if err != nil {
		return err
	}
	fmt.Printf("Order %s: status=%s payment=%s\n", updated.ID, updated.Status, updated.PaymentStatus)
	return nil
}

func (a *app) adminRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin-rm", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	fs.Parse(args)

	if err := a.orders.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func (a *app) theme(args []string) error {
	if len(args) == 0 {
		fmt.Println(a.sessions.Theme())
		return nil
	}
	if err := a.sessions.SetTheme(args[0]); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s\n", args[0])
	return nil
}

func printCart(c *cart.Cart) {
	if c.IsEmpty() {
		fmt.Println("Cart is empty.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tTITLE\tQTY\tPRICE\tLINE TOTAL")
	for _, line := range c.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			line.Product.ID, line.Product.Title, line.Quantity, money(line.Product.Price), money(line.LineTotal()))
	}
	w.Flush()
	fmt.Printf("Total: %s\n", money(c.TotalPrice))
}

func printAddresses(addresses []address.Address) {
	if len(addresses) == 0 {
		fmt.Println("No saved addresses.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tSTREET\tCITY\tZIP\tDEFAULT")
	for _, addr := range addresses {
		mark := ""
		if addr.IsDefault {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", addr.ID, addr.Label, addr.Street, addr.City, addr.Zip, mark)
	}
	w.Flush()
}

func printOrders(orders []order.Order) {
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tPAYMENT\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.PaymentStatus, money(o.TotalAmount))
	}
	w.Flush()
}

// money renders minor units as a decimal amount.
func money(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
