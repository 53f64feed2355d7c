package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
)

// ProductCatalog looks products up by id. Absent products yield repository.ErrNotFound.
type ProductCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// CartStore persists one cart per owner email.
type CartStore interface {
	FindByOwner(ctx context.Context, email string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
}

// UserStore persists wallet and address changes.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
}

// ReceiptSender is notified after a successful checkout.
type ReceiptSender interface {
	SendCheckoutReceipt(ctx context.Context, user *models.User, items []models.CartItem, total int64) error
}

const receiptTimeout = 30 * time.Second

// CartService holds every cart and checkout rule. Each call is a plain
// load-then-save against the stores; concurrent writes to the same cart are
// last-writer-wins.
type CartService struct {
	products      ProductCatalog
	carts         CartStore
	users         UserStore
	receipts      ReceiptSender
	paymentOption string
	log           *zap.Logger
}

type CartOption func(*CartService)

// WithPaymentOption sets the paymentOption given to lazily created carts.
func WithPaymentOption(option string) CartOption {
	return func(s *CartService) { s.paymentOption = option }
}

func WithReceipts(r ReceiptSender) CartOption {
	return func(s *CartService) { s.receipts = r }
}

func NewCartService(products ProductCatalog, carts CartStore, users UserStore, log *zap.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		products:      products,
		carts:         carts,
		users:         users,
		paymentOption: "PAYMENT_OPTION_DEFAULT",
		log:           log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the user's cart or NotFound.
func (s *CartService) GetCart(ctx context.Context, user *models.User) (*models.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, user.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound(apierror.MsgNoCart)
	}
	if err != nil {
		return nil, s.fail("get cart", user, err)
	}
	return cart, nil
}

// AddProductToCart appends a new line item, creating the cart on first use.
// A product already in the cart is rejected; quantities are never merged.
func (s *CartService) AddProductToCart(ctx context.Context, user *models.User, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apierror.InvalidRequest(apierror.MsgQuantityTooLow)
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, s.fail("add to cart", user, err)
	}

	resolved, err := s.resolveCart(ctx, user)
	if err != nil {
		return nil, s.fail("add to cart", user, err)
	}

	cart := resolved.cart
	if cart.IndexOf(product.ID) >= 0 {
		return nil, apierror.InvalidRequest(apierror.MsgProductInCart)
	}
	cart.Items = append(cart.Items, models.CartItem{Product: *product, Quantity: quantity})

	var saved *models.Cart
	switch resolved.kind {
	case cartFound:
		saved, err = s.carts.Save(ctx, cart)
	case cartCreate:
		saved, err = s.carts.Create(ctx, cart)
	}
	if err != nil {
		return nil, s.fail("persist cart", user, err)
	}

	s.log.Debug("product added to cart",
		zap.String("email", user.Email),
		zap.String("product_id", product.ID),
		zap.Int("quantity", quantity))
	return saved, nil
}

// UpdateProductInCart overwrites the quantity of an existing line item.
// Routing quantity 0 to DeleteProductFromCart is the caller's job.
func (s *CartService) UpdateProductInCart(ctx context.Context, user *models.User, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apierror.InvalidRequest(apierror.MsgQuantityTooLow)
	}

	if _, err := s.findProduct(ctx, productID); err != nil {
		return nil, s.fail("update cart", user, err)
	}

	cart, err := s.carts.FindByOwner(ctx, user.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.InvalidRequest(apierror.MsgNoCartForUpdate)
	}
	if err != nil {
		return nil, s.fail("update cart", user, err)
	}

	idx := cart.IndexOf(productID)
	if idx < 0 {
		return nil, apierror.InvalidRequest(apierror.MsgProductNotInCart)
	}
	cart.Items[idx].Quantity = quantity

	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return nil, s.fail("persist cart", user, err)
	}
	return saved, nil
}

// DeleteProductFromCart removes one line item and keeps the others in order.
func (s *CartService) DeleteProductFromCart(ctx context.Context, user *models.User, productID string) (*models.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, user.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.InvalidRequest(apierror.MsgNoCart)
	}
	if err != nil {
		return nil, s.fail("delete from cart", user, err)
	}

	idx := cart.IndexOf(productID)
	if idx < 0 {
		return nil, apierror.InvalidRequest(apierror.MsgProductNotInCart)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return nil, s.fail("persist cart", user, err)
	}
	return saved, nil
}

// Checkout debits the wallet by the cart total and empties the cart.
//
// The checks run in a fixed order: missing cart, empty cart, default
// address, insufficient balance. The user is saved before the cart, and the
// two writes are not transactional: if the cart write fails the wallet stays
// debited with the items still in the cart. That case is logged at error
// level with everything needed to reconcile it by hand.
func (s *CartService) Checkout(ctx context.Context, user *models.User) (*models.User, error) {
	cart, err := s.carts.FindByOwner(ctx, user.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound(apierror.MsgNoCart)
	}
	if err != nil {
		return nil, s.fail("checkout", user, err)
	}

	if len(cart.Items) == 0 {
		return nil, apierror.InvalidRequest(apierror.MsgEmptyCart)
	}
	if !user.HasNonDefaultAddress() {
		return nil, apierror.InvalidRequest(apierror.MsgDefaultAddress)
	}

	total := cart.Total()
	if total > user.WalletMoney {
		return nil, apierror.InvalidRequest(apierror.MsgInsufficientFunds)
	}

	debited := *user
	debited.WalletMoney -= total
	if err := s.users.Save(ctx, &debited); err != nil {
		return nil, s.fail("checkout: debit wallet", user, err)
	}

	purchased := cart.Clone().Items
	cart.Items = []models.CartItem{}
	if _, err := s.carts.Save(ctx, cart); err != nil {
		s.log.Error("checkout: wallet debited but cart not emptied",
			zap.String("email", user.Email),
			zap.String("user_id", user.ID),
			zap.Int64("total", total),
			zap.Int64("wallet_before", user.WalletMoney),
			zap.Int64("wallet_after", debited.WalletMoney),
			zap.Error(err))
		return nil, apierror.Internal()
	}

	s.log.Info("checkout complete",
		zap.String("email", user.Email),
		zap.Int64("total", total),
		zap.Int64("wallet", debited.WalletMoney),
		zap.Int("items", len(purchased)))

	s.sendReceipt(&debited, purchased, total)
	return &debited, nil
}

// --- load-or-create ---

type cartResolution int

const (
	cartFound cartResolution = iota
	cartCreate
)

// resolvedCart says whether the cart was loaded or has to be created on save.
type resolvedCart struct {
	kind cartResolution
	cart *models.Cart
}

func (s *CartService) resolveCart(ctx context.Context, user *models.User) (resolvedCart, error) {
	cart, err := s.carts.FindByOwner(ctx, user.Email)
	switch {
	case err == nil:
		return resolvedCart{kind: cartFound, cart: cart}, nil
	case errors.Is(err, repository.ErrNotFound):
		return resolvedCart{kind: cartCreate, cart: &models.Cart{
			Email:         user.Email,
			Items:         []models.CartItem{},
			PaymentOption: s.paymentOption,
		}}, nil
	default:
		return resolvedCart{}, err
	}
}

func (s *CartService) findProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.InvalidRequest(apierror.MsgProductNotInDB)
	}
	return product, err
}

// fail lets taxonomy errors through and logs anything else before hiding it
// behind a generic Internal error.
func (s *CartService) fail(op string, user *models.User, err error) error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	s.log.Error(op+" failed", zap.String("email", user.Email), zap.Error(err))
	return apierror.Internal()
}

func (s *CartService) sendReceipt(user *models.User, items []models.CartItem, total int64) {
	if s.receipts == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), receiptTimeout)
		defer cancel()
		if err := s.receipts.SendCheckoutReceipt(ctx, user, items, total); err != nil {
			s.log.Warn("checkout receipt not sent", zap.String("email", user.Email), zap.Error(err))
		}
	}()
}
