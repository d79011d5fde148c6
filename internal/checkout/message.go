package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders a decimal as Brazilian currency, e.g. "R$ 1.234,56".
func FormatBRL(value decimal.Decimal) string {
	fixed := value.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, grouped.String(), fracPart)
}

// Receipt holds everything rendered into the order confirmation message.
type Receipt struct {
	StoreName     string
	OrderNumber   *int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Items         []VerifiedItem
	Total         decimal.Decimal
}

// BuildReceiptMessage renders the pt-BR order confirmation text.
func BuildReceiptMessage(receipt Receipt) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🛒 *PEDIDO CONFIRMADO - %s*\n\n", strings.ToUpper(receipt.StoreName)))
	if receipt.OrderNumber != nil {
		b.WriteString(fmt.Sprintf("Pedido nº %d\n\n", *receipt.OrderNumber))
	}
	b.WriteString("👤 *Dados do Cliente:*\n")
	b.WriteString(fmt.Sprintf("Nome: %s\n", receipt.CustomerName))
	b.WriteString(fmt.Sprintf("Email: %s\n", receipt.CustomerEmail))
	b.WriteString(fmt.Sprintf("Telefone: %s\n\n", receipt.CustomerPhone))
	b.WriteString("📦 *Produtos:*\n")
	b.WriteString("─────────────────\n")

	for _, item := range receipt.Items {
		b.WriteString(fmt.Sprintf("• %s\n", item.Name))
		b.WriteString(fmt.Sprintf("  Qtd: %d x %s\n", item.Quantity, FormatBRL(item.UnitPrice)))
		b.WriteString(fmt.Sprintf("  Subtotal: %s\n\n", FormatBRL(item.Subtotal)))
	}

	b.WriteString("─────────────────\n")
	b.WriteString(fmt.Sprintf("💰 *TOTAL: %s*\n\n", FormatBRL(receipt.Total)))
	b.WriteString(fmt.Sprintf("_Pedido realizado pelo site %s_", receipt.StoreName))

	return b.String()
}

// BuildWhatsAppLink produces the wa.me deep link carrying the receipt text.
func BuildWhatsAppLink(number, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}
