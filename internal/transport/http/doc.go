// Package http implements the HTTP handlers of the cleaning API. Handlers
// stay thin: they decode the request, call the service layer and format
// the response.
//
// # Endpoints
//
//	POST /api/v1/clean    raw CSV or xlsx body, cleaned table or run report
//	GET  /api/health      liveness and runtime information
//	GET  /api/version     build and data format versions
//	GET  /metrics         Prometheus scrape, when the exporter is enabled
//
// The clean endpoint accepts text/csv, text/plain, application/octet-stream
// and the xlsx media type. Query parameters:
//
//	view=table|report     response body (default table)
//	format=csv|parquet|xlsx
//	encoding=utf-8|windows-1252|iso-8859-1
//	sheet=<name>          worksheet of an xlsx upload
//
// # Error Handling
//
// All errors are RFC 7807 problem details written by the shared
// ErrorHandler. Data-quality failures answer 422 and name the column, the
// row and the offending value:
//
//	{
//	    "type": "/errors/data/parse",
//	    "title": "Unparseable Value",
//	    "status": 422,
//	    "column": "date",
//	    "row": 0,
//	    "value": "31/2/2014",
//	    "instance": "/api/v1/clean"
//	}
package http
