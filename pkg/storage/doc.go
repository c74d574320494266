// Package storage provides persistent storage for the bot using BadgerDB.
// Values are stored as JSON-marshalled whole records; all updates are
// full-record replacements.
package storage
