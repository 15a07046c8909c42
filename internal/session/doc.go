// Package session owns the collections one signed-in user works with.
//
// A session is opened from verified token claims. It builds one store per
// dashboard collection, warms them from the snapshot cache, loads them
// concurrently, and tears them all down on Close. Admin-only collections
// (the user manager and the royalty ledger) exist only for admin claims.
package session
