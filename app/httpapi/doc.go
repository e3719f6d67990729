// Package httpapi exposes the lending service as a JSON API mounted at /api/v1.
//
// Routes:
//
//	POST   /items                      add an item
//	GET    /items?searchBy=&q=         list or search items
//	GET    /items/{itemID}             get an item
//	PUT    /items/{itemID}/copies      set the total number of copies
//	DELETE /items/{itemID}             remove an item
//	POST   /loans                      check out a copy
//	GET    /loans/{loanID}             get a loan
//	POST   /loans/{loanID}/return      return a loan
//	POST   /loans/{loanID}/payment     pay the penalty of a loan
//	GET    /borrowers/{borrowerID}/loans
//
// Errors are returned as {"error": "..."} with 400 for malformed requests, 404 for unknown ids,
// 422 for rejected values, 409 for capacity and state conflicts and 500 for everything else.
// The borrower id is trusted as given.
package httpapi
