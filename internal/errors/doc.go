// Package errors provides coded, structured errors for page runtimes and
// the uniroute CLI.
//
// Every error has a code (e.g. "E101") registered with a category, a short
// message, a longer explanation and a documentation URL:
//
//	err := errors.New("E101").WithDetail(`page "pages/missing/index" is not in uniroute.json`)
//	fmt.Println(err.Error())  // E101: Page not registered
//	fmt.Print(err.Format())   // colored multi-line output for terminals
//
// Errors compare by code with errors.Is, so callers can branch on a kind
// without matching messages:
//
//	if errors.Is(err, errors.New("E104")) { ... }
package errors
