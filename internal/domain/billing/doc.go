// Package billing contains the Billing bounded context.
// This context is responsible for billing documents (quotations and
// invoices): their line items, tax regime, payment details, and the
// share tokens that grant anonymous read access to a rendered document.
package billing
