package extract

import "regexp"

var reInvoiceNo = regexp.MustCompile(`(?i)\bFACTURA\s*(?:N[ÚU]MERO|NUM\.?|N[º°O]\.?|N\.)\s*:?\s*([A-Z0-9][A-Z0-9/-]*)`)

// invoiceNumber finds "Factura Nº X", "Factura num. X" or "Factura número X".
func invoiceNumber(text string) string {
	return firstGroup(text, reInvoiceNo)
}
