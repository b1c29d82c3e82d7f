// Package http implements the HTTP request handlers for the territory
// service. Handlers stay thin: they parse and validate the request,
// delegate to the service layer, and format the response.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                             ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// All error responses follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/customer-not-found",
//	    "title": "Customer Not Found",
//	    "status": 404,
//	    "detail": "No customer with that number exists in the loaded dataset."
//	}
//
// Handlers are tested with httptest against real services backed by
// temporary directories.
package http
