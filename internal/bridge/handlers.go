package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/medcart/internal/apperr"
	"github.com/Spok95/medcart/internal/camunda"
	"github.com/Spok95/medcart/internal/domain/cart"
	"github.com/Spok95/medcart/internal/domain/inventory"
	"github.com/Spok95/medcart/internal/domain/order"
	"github.com/Spok95/medcart/internal/domain/reservation"
	"github.com/Spok95/medcart/internal/notify"
	"github.com/Spok95/medcart/internal/webhook"
)

// Зависимости хендлеров — те же контракты, что у прямых вызывающих:
// никакого обхода доменной валидации.

type InventoryStore interface {
	ListByMedication(ctx context.Context, medicationID string) ([]inventory.Batch, error)
	SetAmount(ctx context.Context, id int64, newAmount float64) (*inventory.Batch, error)
}

type CartStore interface {
	Create(ctx context.Context, c cart.Cart) (*cart.Cart, error)
	SetStatus(ctx context.Context, id int64, s cart.Status) (*cart.Cart, error)
}

type OrderStore interface {
	Create(ctx context.Context, o order.Order) (*order.Order, error)
}

type Reserver interface {
	ReserveBulk(ctx context.Context, reqs []reservation.Request) ([]cart.Item, error)
}

type Matcher interface {
	Check(ctx context.Context, name, medicationID string, amount float64) (*webhook.MatchResult, error)
}

type CartsFetcher interface {
	Fetch(ctx context.Context) ([]map[string]any, error)
}

type Handlers struct {
	Inventory InventoryStore
	Carts     CartStore
	Orders    OrderStore
	Reserver  Reserver
	Matcher   Matcher
	CartsHook CartsFetcher
	Notifier  notify.Notifier
	Log       *slog.Logger
}

// Handler выполняет одну доменную команду; ошибка любого вида превращается
// консьюмером в failure-отчёт с retries=0.
type Handler func(ctx context.Context, vars camunda.Variables) (map[string]any, error)

// InventoryCheck: остаток и порог по медикаменту для решения "идти ли к AI".
func (h *Handlers) InventoryCheck(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	medicationID := vars.String("medication_id")
	amountNeeded, err := vars.Float("amount")
	if err != nil {
		return nil, err
	}

	h.Notifier.Event(ctx, "Bridge",
		fmt.Sprintf("Fetching inventory for: %s (needed %v)", medicationID, amountNeeded))

	batches, err := h.Inventory.ListByMedication(ctx, medicationID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, apperr.NotFound("Medication", medicationID)
	}

	first := batches[0]
	h.Notifier.Event(ctx, "Decision",
		fmt.Sprintf("%s going to the AI ? %t", medicationID, first.Amount-amountNeeded < first.MinStock))

	return map[string]any{
		"current_stock": first.Amount,
		"min_stock":     first.MinStock,
		"inventory_id":  first.ID,
	}, nil
}

// AICheck: спрашивает вебхук сопоставления и кладёт чек-лист в переменную
// процесса.
func (h *Handlers) AICheck(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	name := vars.String("medication_name")
	medicationID := vars.String("medication_id")
	amountNeeded, err := vars.Float("amount")
	if err != nil {
		return nil, err
	}

	h.Notifier.Event(ctx, "Bridge", "Asking AI/Storage about: "+name)

	res, err := h.Matcher.Check(ctx, name, medicationID, amountNeeded)
	if err != nil {
		return nil, err
	}
	if res.Text != "" {
		h.Notifier.Event(ctx, "AI Response", res.Text)
	}

	// вебхук не отдаёт локацию и количество — подставляем известное
	checklist := []map[string]any{{
		"checked":       res.Found,
		"name":          name,
		"location":      "Unknown",
		"amount":        amountNeeded,
		"medication_id": medicationID,
	}}

	return map[string]any{
		"found":         res.Found,
		"medication_id": medicationID,
		"location":      "Unknown",
		"amount":        amountNeeded,
		"checklist":     checklist,
	}, nil
}

// UpdateStock: новый абсолютный остаток = current_stock - amount.
func (h *Handlers) UpdateStock(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	inventoryID, err := vars.Int("inventory_id")
	if err != nil {
		return nil, err
	}
	currentStock, err := vars.Float("current_stock")
	if err != nil {
		return nil, err
	}
	amount, err := vars.Float("amount")
	if err != nil {
		return nil, err
	}

	newAmount := currentStock - amount
	h.Notifier.Event(ctx, "Bridge",
		fmt.Sprintf("Updating Inventory ID %d to %v", inventoryID, newAmount))

	if _, err := h.Inventory.SetAmount(ctx, inventoryID, newAmount); err != nil {
		return nil, err
	}
	return nil, nil
}

// CreateOrder: заказ на дозакупку из переменных процесса.
func (h *Handlers) CreateOrder(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	orderDate := time.Now()
	if vars.Has("order_date") {
		raw := vars.String("order_date")
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apperr.Decoding("order_date", raw)
		}
		orderDate = parsed
	}

	medicationID := vars.String("medication_id")
	amount, err := vars.Float("amount")
	if err != nil {
		return nil, err
	}

	o := order.Order{
		Name: "Camunda Order",
		Date: orderDate,
		Medications: []order.Line{
			{MedicationID: medicationID, Amount: amount},
		},
		IsInternal: vars.Bool("is_internal"),
		IsRush:     vars.Bool("is_rush"),
	}

	h.Notifier.Event(ctx, "Bridge", "Creating order "+o.Name)

	created, err := h.Orders.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	return map[string]any{"order_id": created.ID}, nil
}

// UpdateChecklist: правит флаг checked у строки чек-листа в переменной
// процесса (состояние живёт в движке, не у нас).
func (h *Handlers) UpdateChecklist(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	medicationID := vars.String("medication_id")
	newFound := vars.Bool("new_found")

	checklist, err := vars.List("checklist")
	if err != nil {
		return nil, err
	}
	if len(checklist) == 0 {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "Checklist not found",
			Details: "Checklist variable is missing",
		}
	}

	h.Notifier.Event(ctx, "Bridge",
		fmt.Sprintf("Updating checklist for %s to found: %t", medicationID, newFound))

	for _, item := range checklist {
		if item["medication_id"] == medicationID {
			item["checked"] = newFound
			return map[string]any{"checklist": checklist}, nil
		}
	}
	return nil, &apperr.Error{
		Kind:    apperr.KindNotFound,
		Message: "Checklist item not found",
		Details: "No item for medication_id " + medicationID,
	}
}

// CheckCarts: внешний вебхук отдаёт корзины, берём первую со статусом
// Prepared.
func (h *Handlers) CheckCarts(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	h.Notifier.Event(ctx, "Bridge", "Checking carts availability")

	carts, err := h.CartsHook.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	var prepared []map[string]any
	for _, c := range carts {
		if c["status"] == string(cart.StatusPrepared) {
			prepared = append(prepared, c)
		}
	}

	out := map[string]any{
		"carts":     carts,
		"available": len(prepared) > 0,
	}
	if len(prepared) > 0 {
		out["cart_id"] = prepared[0]["id"]
	}
	return out, nil
}

// Шаблон комплектации новой корзины; запрошенный процессом медикамент
// перекрывает строку шаблона или добавляется к нему.
var defaultCartLines = []struct {
	MedicationID  string
	Amount        float64
	TimeSensitive bool
}{
	{"local_anesthetic-001", 1.0, false},
	{"hypnotic-001", 1.0, true},
	{"opioid-001", 1.0, true},
	{"opioid-002", 1.0, true},
	{"vasoactive-002", 1.0, false},
	{"vasoactive-001", 1.0, false},
	{"analgetic-001", 1.0, false},
	{"antiemetic-001", 1.0, false},
	{"infusion-001", 1.0, false},
	{"infusion-003", 1.0, false},
}

// CreateCart: создаёт корзину, собирает позиции по шаблону и резервирует их
// bulk-вызовом. Частичная (и даже нулевая) комплектация задачу не валит.
func (h *Handlers) CreateCart(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	medicationID := vars.String("medication_id")
	if medicationID == "" {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "medication_id is required",
			Details: "The process must set the medication_id variable",
		}
	}
	if !vars.Has("amount") {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "amount is required",
			Details: "The process must set the amount variable",
		}
	}
	amount, err := vars.Float("amount")
	if err != nil {
		return nil, err
	}

	// без согласованного чек-листа процесса корзина не создаётся
	checklist, err := vars.List("checklist")
	if err != nil {
		return nil, err
	}
	if len(checklist) == 0 {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "Checklist not found",
			Details: "Checklist variable is missing",
		}
	}

	operationDate := time.Now().AddDate(0, 0, 1)
	if vars.Has("operationDate") {
		if parsed, err := time.Parse("2006-01-02", vars.String("operationDate")); err == nil {
			operationDate = parsed
		}
	}

	c := cart.Cart{
		Status:          cart.StatusInUse,
		PatientID:       orDefault(vars.String("patientId"), "Unclaimed"),
		Operation:       orDefault(vars.String("operation"), "Undefined"),
		OperationDate:   operationDate,
		AnaesthesiaType: orDefault(vars.String("anaesthesiaType"), "General"),
		RoomNumber:      orDefault(vars.String("roomNumber"), "Undefined"),
	}

	h.Notifier.Event(ctx, "Bridge",
		fmt.Sprintf("Creating cart with medication: %s, amount: %v", medicationID, amount))

	created, err := h.Carts.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	lines := make([]struct {
		MedicationID  string
		Amount        float64
		TimeSensitive bool
	}, len(defaultCartLines))
	copy(lines, defaultCartLines)

	overlaid := false
	for i := range lines {
		if lines[i].MedicationID == medicationID {
			lines[i].Amount = amount
			overlaid = true
			break
		}
	}
	if !overlaid {
		lines = append(lines, struct {
			MedicationID  string
			Amount        float64
			TimeSensitive bool
		}{medicationID, amount, false})
	}

	var reqs []reservation.Request
	for _, line := range lines {
		batchID, ok := h.pickBatch(ctx, line.MedicationID, line.Amount)
		if !ok {
			h.Log.Warn("no inventory for cart line", "medication_id", line.MedicationID)
			continue
		}
		reqs = append(reqs, reservation.Request{
			CartID:        created.ID,
			InventoryID:   batchID,
			MedicationID:  line.MedicationID,
			Amount:        line.Amount,
			TimeSensitive: line.TimeSensitive,
		})
	}

	if len(reqs) > 0 {
		items, err := h.Reserver.ReserveBulk(ctx, reqs)
		if err != nil {
			// недокомплект — не провал задачи: корзина уже создана
			h.Log.Warn("bulk reserve failed", "cart_id", created.ID, "err", err)
		} else if len(items) < len(reqs) {
			h.Log.Warn("partial cart stocking",
				"cart_id", created.ID, "added", len(items), "requested", len(reqs))
		}
	} else {
		h.Log.Warn("no medications could be added to cart", "cart_id", created.ID)
	}

	return map[string]any{"cart": created, "cart_id": created.ID}, nil
}

// pickBatch: первая партия с достаточным остатком, иначе первая вообще.
func (h *Handlers) pickBatch(ctx context.Context, medicationID string, required float64) (int64, bool) {
	batches, err := h.Inventory.ListByMedication(ctx, medicationID)
	if err != nil {
		h.Log.Warn("inventory lookup failed", "medication_id", medicationID, "err", err)
		return 0, false
	}
	if len(batches) == 0 {
		return 0, false
	}
	for _, b := range batches {
		if b.Amount >= required {
			return b.ID, true
		}
	}
	return batches[0].ID, true
}

// UpdateCartStatus: перевод корзины в In-Use.
func (h *Handlers) UpdateCartStatus(ctx context.Context, vars camunda.Variables) (map[string]any, error) {
	if !vars.Has("cart_id") {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "cart_id is required",
			Details: "cart_id parameter is missing",
		}
	}
	cartID, err := vars.Int("cart_id")
	if err != nil {
		return nil, err
	}

	h.Notifier.Event(ctx, "Bridge",
		fmt.Sprintf("Updating cart %d status to 'In-Use'", cartID))

	if _, err := h.Carts.SetStatus(ctx, cartID, cart.StatusInUse); err != nil {
		return nil, err
	}
	return nil, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
