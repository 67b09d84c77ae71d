// Package errors provides coded, actionable errors for the routemount CLI.
//
// Each error has a unique code that maps to a short message, a detailed
// explanation and, where one exists, a suggested fix:
//   - E1xx: configuration files and flags
//   - E2xx: route tree traversal
//   - E3xx: mounting and serving
//
// # Usage
//
//	err := errors.New("E201").
//	    WithPath("/srv/app/routes").
//	    Wrap(fs.ErrNotExist)
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR E201: Route directory not found
//	//
//	//   /srv/app/routes
//	//
//	//   Cause: file does not exist
//	//
//	//   Hint: Check the root directory, or create it
//
// RouteError unwraps to its cause, so errors.Is keeps working across the
// conversion from library errors.
package errors
