package invoice

import "strings"

// Rule yields candidate values from a normalized document in priority order.
type Rule func(doc map[string]any) []any

var (
	nameKeys = []string{"name", "fullName", "full_name", "displayName", "firstName", "first_name", "lastName", "last_name"}

	emailKeys = []string{"email", "emailAddress", "email_address", "mail", "value"}

	mobileKeys = []string{"mobile", "mobileNumber", "mobile_number", "phone", "phoneNumber", "phone_number", "contactNumber", "contact", "value"}

	zipKeys = []string{"zipCode", "zip_code", "zip", "pincode", "pinCode", "postalCode", "postal_code"}
)

// CustomerNameRules resolve the buyer's display name.
var CustomerNameRules = []Rule{
	Scan([]string{"customerName"}, nameKeys...),
	Within([]string{"customer"}, nameKeys...),
	Within([]string{"userId"}, nameKeys...),
	Within([]string{"user"}, nameKeys...),
	Within([]string{"billingAddress"}, nameKeys...),
	Within([]string{"deliveryAddress"}, nameKeys...),
	Within([]string{"shippingAddress"}, nameKeys...),
}

// CustomerEmailRules resolve the buyer's email.
var CustomerEmailRules = []Rule{
	Scan([]string{"customerEmail"}, emailKeys...),
	Scan([]string{"email"}, emailKeys...),
	Within([]string{"customer"}, emailKeys[:4]...),
	Within([]string{"userId"}, emailKeys[:4]...),
	Within([]string{"user"}, emailKeys[:4]...),
	Within([]string{"billingAddress"}, emailKeys[:4]...),
}

// CustomerMobileRules resolve the buyer's phone number.
var CustomerMobileRules = []Rule{
	Scan([]string{"customerMobile"}, mobileKeys...),
	Scan([]string{"customerPhone"}, mobileKeys...),
	Scan([]string{"mobile"}, mobileKeys...),
	Scan([]string{"phone"}, mobileKeys...),
	Within([]string{"customer"}, mobileKeys[:8]...),
	Within([]string{"userId"}, mobileKeys[:8]...),
	Within([]string{"user"}, mobileKeys[:8]...),
	Within([]string{"billingAddress"}, mobileKeys[:8]...),
	Within([]string{"deliveryAddress"}, mobileKeys[:8]...),
}

// ProductNameRules resolve a line item's display name, tolerating
// populated and unpopulated product references.
var ProductNameRules = []Rule{
	At("productName"),
	At("productId", "name"),
	At("product", "name"),
	At("name"),
	At("title"),
	At("variantId", "name"),
}

// ProductIdentifierRules resolve the code printed under a line item.
var ProductIdentifierRules = []Rule{
	At("sku"),
	At("productCode"),
	At("productId", "sku"),
	At("productId", "productCode"),
	At("productId", "_id"),
	At("productId", "id"),
	At("productId"),
	At("product", "_id"),
	At("variantId", "_id"),
	At("variantId"),
}

// QROptionRules resolve the "with QR code" variant flag of a line item.
var QROptionRules = []Rule{
	At("withQr"),
	At("withQR"),
	At("qrCode"),
	At("variantId", "withQr"),
	At("variant"),
	At("variantName"),
	At("variantId", "name"),
}

// MRPRules resolve the list price shown struck through.
var MRPRules = []Rule{
	At("mrp"),
	At("productId", "mrp"),
	At("variantId", "mrp"),
	At("product", "mrp"),
}

// PartialPaymentRules resolve an explicit amount already paid.
var PartialPaymentRules = []Rule{
	At("paymentDetails", "amountPaid"),
	At("amountPaid"),
	At("paidAmount"),
}

// OrderNumberRules resolve the human facing order reference.
var OrderNumberRules = []Rule{
	At("orderNumber"),
	At("orderId"),
	At("invoiceNumber"),
	At("_id"),
	At("id"),
}

// BillingAddressRules and ShippingAddressRules pick the address object to print.
var (
	BillingAddressRules  = []Rule{At("billingAddress"), At("billing"), At("deliveryAddress"), At("shippingAddress")}
	ShippingAddressRules = []Rule{At("deliveryAddress"), At("shippingAddress"), At("shipping"), At("billingAddress")}
)

// At reads a nested field.
func At(path ...string) Rule {
	return func(doc map[string]any) []any {
		return []any{Field(doc, path...)}
	}
}

// Scan reads the field at path; scalars are used directly and objects are
// searched for keys in order.
func Scan(path []string, keys ...string) Rule {
	return func(doc map[string]any) []any {
		value := Field(doc, path...)
		obj, ok := value.(map[string]any)
		if !ok {
			return []any{value}
		}
		return valuesOf(obj, keys)
	}
}

// Within only searches objects at path; scalars there mean something else.
func Within(path []string, keys ...string) Rule {
	return func(doc map[string]any) []any {
		obj, ok := Field(doc, path...).(map[string]any)
		if !ok {
			return nil
		}
		return valuesOf(obj, keys)
	}
}

// Field walks nested objects by key, returning nil when a hop is missing.
func Field(doc any, path ...string) any {
	current := doc
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[key]
	}
	return current
}

// Candidates flattens the output of rules in order.
func Candidates(doc map[string]any, rules []Rule) []any {
	var out []any
	for _, rule := range rules {
		out = append(out, rule(doc)...)
	}
	return out
}

// ResolveProductName applies ProductNameRules to a line item.
func ResolveProductName(item map[string]any) string {
	return PickText(Candidates(item, ProductNameRules)...)
}

// ResolveProductIdentifier applies ProductIdentifierRules to a line item.
func ResolveProductIdentifier(item map[string]any) string {
	return PickText(Candidates(item, ProductIdentifierRules)...)
}

// FormatAddress renders an address object or string as one line.
func FormatAddress(value any) string {
	if text, ok := asText(value); ok {
		return text
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return ""
	}
	if full := PickText(obj["fullAddress"], obj["full_address"]); full != "" {
		return full
	}
	parts := []string{
		PickText(obj["street"], obj["addressLine1"], obj["line1"]),
		PickText(obj["addressLine2"], obj["line2"], obj["landmark"]),
		PickText(obj["city"]),
		PickText(obj["state"]),
		PickText(valuesOf(obj, zipKeys)...),
		PickText(obj["country"]),
	}
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func valuesOf(obj map[string]any, keys []string) []any {
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, obj[key])
	}
	return out
}
