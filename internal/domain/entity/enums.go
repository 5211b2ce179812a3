package entity

import "github.com/jhoicas/inventario-pos/pkg/textnorm"

// Las enumeraciones se guardan con su valor canónico. Los Parse* aceptan
// variantes en español e inglés sin distinguir mayúsculas ni tildes.

// PaymentMethod medio de pago.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

var paymentAliases = map[string]PaymentMethod{
	"cash": PaymentCash, "efectivo": PaymentCash, "contado": PaymentCash,
	"card": PaymentCard, "tarjeta": PaymentCard, "tarjeta credito": PaymentCard,
	"tarjeta debito": PaymentCard, "credito": PaymentCard, "debito": PaymentCard, "datafono": PaymentCard,
	"transfer": PaymentTransfer, "transferencia": PaymentTransfer, "transferencia bancaria": PaymentTransfer,
	"other": PaymentOther, "otro": PaymentOther, "otros": PaymentOther,
}

// ParsePaymentMethod interpreta un medio de pago.
func ParsePaymentMethod(s string) (PaymentMethod, bool) { return parseEnum(s, paymentAliases) }

// Label nombre para mostrar en documentos.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Efectivo"
	case PaymentCard:
		return "Tarjeta"
	case PaymentTransfer:
		return "Transferencia"
	default:
		return "Otro"
	}
}

// SaleStatus estado de una venta.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusEdited    SaleStatus = "edited"
)

var saleStatusAliases = map[string]SaleStatus{
	"pending": SaleStatusPending, "pendiente": SaleStatusPending,
	"completed": SaleStatusCompleted, "completada": SaleStatusCompleted, "completado": SaleStatusCompleted,
	"pagada": SaleStatusCompleted, "pagado": SaleStatusCompleted,
	"cancelled": SaleStatusCancelled, "canceled": SaleStatusCancelled, "cancelada": SaleStatusCancelled,
	"cancelado": SaleStatusCancelled, "anulada": SaleStatusCancelled, "anulado": SaleStatusCancelled,
	"edited": SaleStatusEdited, "editada": SaleStatusEdited, "editado": SaleStatusEdited,
}

// ParseSaleStatus interpreta un estado de venta.
func ParseSaleStatus(s string) (SaleStatus, bool) { return parseEnum(s, saleStatusAliases) }

// ProductMovementKind tipo de movimiento de producto.
type ProductMovementKind string

const (
	ProductEntry      ProductMovementKind = "entry"
	ProductExit       ProductMovementKind = "exit"
	ProductAdjustment ProductMovementKind = "adjustment"
)

var productKindAliases = map[string]ProductMovementKind{
	"entry": ProductEntry, "entrada": ProductEntry,
	"exit": ProductExit, "salida": ProductExit,
	"adjustment": ProductAdjustment, "ajuste": ProductAdjustment,
}

// ParseProductMovementKind interpreta un tipo de movimiento de producto.
func ParseProductMovementKind(s string) (ProductMovementKind, bool) {
	return parseEnum(s, productKindAliases)
}

// MaterialMovementKind tipo de movimiento de materia prima.
type MaterialMovementKind string

const (
	MaterialPurchase   MaterialMovementKind = "purchase"
	MaterialAdjustment MaterialMovementKind = "adjustment"
	MaterialProduction MaterialMovementKind = "production"
	MaterialReturn     MaterialMovementKind = "return"
	MaterialWaste      MaterialMovementKind = "waste"
)

var materialKindAliases = map[string]MaterialMovementKind{
	"purchase": MaterialPurchase, "compra": MaterialPurchase,
	"adjustment": MaterialAdjustment, "ajuste": MaterialAdjustment,
	"production": MaterialProduction, "produccion": MaterialProduction, "consumo": MaterialProduction,
	"return": MaterialReturn, "devolucion": MaterialReturn,
	"waste": MaterialWaste, "merma": MaterialWaste, "desperdicio": MaterialWaste,
}

// ParseMaterialMovementKind interpreta un tipo de movimiento de materia prima.
func ParseMaterialMovementKind(s string) (MaterialMovementKind, bool) {
	return parseEnum(s, materialKindAliases)
}

// ExpenseKind qué sale del negocio.
type ExpenseKind string

const (
	ExpenseCash        ExpenseKind = "cash"
	ExpenseProduct     ExpenseKind = "product"
	ExpenseRawMaterial ExpenseKind = "raw_material"
)

var expenseKindAliases = map[string]ExpenseKind{
	"cash": ExpenseCash, "efectivo": ExpenseCash, "dinero": ExpenseCash,
	"product": ExpenseProduct, "producto": ExpenseProduct,
	"raw material": ExpenseRawMaterial, "materia prima": ExpenseRawMaterial, "insumo": ExpenseRawMaterial,
}

// ParseExpenseKind interpreta el tipo de gasto.
func ParseExpenseKind(s string) (ExpenseKind, bool) { return parseEnum(s, expenseKindAliases) }

// ExpenseReason motivo del gasto.
type ExpenseReason string

const (
	ReasonDamaged     ExpenseReason = "damaged"
	ReasonLost        ExpenseReason = "lost"
	ReasonSample      ExpenseReason = "sample"
	ReasonDonation    ExpenseReason = "donation"
	ReasonPersonalUse ExpenseReason = "personal_use"
	ReasonWaste       ExpenseReason = "waste"
	ReasonOther       ExpenseReason = "other"
)

var expenseReasonAliases = map[string]ExpenseReason{
	"damaged": ReasonDamaged, "danado": ReasonDamaged, "averiado": ReasonDamaged, "roto": ReasonDamaged,
	"lost": ReasonLost, "perdido": ReasonLost, "perdida": ReasonLost,
	"sample": ReasonSample, "muestra": ReasonSample,
	"donation": ReasonDonation, "donacion": ReasonDonation,
	"personal use": ReasonPersonalUse, "uso personal": ReasonPersonalUse, "consumo personal": ReasonPersonalUse,
	"waste": ReasonWaste, "desperdicio": ReasonWaste, "merma": ReasonWaste,
	"other": ReasonOther, "otro": ReasonOther,
}

// ParseExpenseReason interpreta el motivo del gasto.
func ParseExpenseReason(s string) (ExpenseReason, bool) { return parseEnum(s, expenseReasonAliases) }

// Label nombre para mostrar.
func (r ExpenseReason) Label() string {
	switch r {
	case ReasonDamaged:
		return "Dañado"
	case ReasonLost:
		return "Perdido"
	case ReasonSample:
		return "Muestra"
	case ReasonDonation:
		return "Donación"
	case ReasonPersonalUse:
		return "Uso personal"
	case ReasonWaste:
		return "Desperdicio"
	default:
		return "Otro"
	}
}

func parseEnum[T ~string](s string, aliases map[string]T) (T, bool) {
	v, ok := aliases[textnorm.Key(s)]
	return v, ok
}
