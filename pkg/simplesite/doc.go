// Package simplesite is a multi-tenant site builder core: accounts own
// sites, sites contain pages, and a page's editor state can be published as
// a static HTML document to a blob store.
//
// A single Service interface enforces ownership on every operation. A site
// or page the caller does not own is reported exactly like a missing one.
// Repositories (memory, DynamoDB, Redis, Postgres) and blob stores (memory,
// filesystem, S3) are provided under subpackages; the chi-based HTTP API
// lives in package api and the Lambda proxy adapter in package lambda.
//
// # Publishing
//
// PublishPage renders the page's editor state, writes it under
// sites/{site slug}/{page slug}.html ("index" for the homepage) and records
// the rendered state and public URL on the page. An upload failure leaves
// the page untouched.
package simplesite
