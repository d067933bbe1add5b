// Package profile persists named snapshots of the export configuration.
//
// A profile captures the current value of every key in config.CapturedKeys.
// All profiles live in a single JSON file (profil.json) that is rewritten
// atomically on every change:
//
//	{ "version": 1,
//	  "active_profile_key": "Client A",
//	  "profiles": {
//	    "Client A": { "name": "Client A",
//	                  "updated_at": "2026-10-19T08:30:00Z",
//	                  "data": { "pathdossier": "/exports", ... } } } }
//
// # Usage
//
//	store := profile.New(path, cfg)
//	_ = store.Save("Client A")   // snapshot current config
//	_ = store.Load("Client A")   // apply it back
//
// A missing, malformed or outdated file reads as an empty schema. Loading a
// profile ignores keys it does not know and leaves keys it lacks untouched.
package profile
