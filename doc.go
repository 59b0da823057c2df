// Package surveymap reconciles raw labels observed in uploaded provider
// compensation surveys against standardized names. Different survey vendors
// spell the same concept differently ("Cardiology", "Cardiovascular
// Disease", "CARDIOLOGY - GENERAL"); this module classifies every observed
// label as unmapped, mapped, or learned, and lets users group labels under
// standardized names for each entity kind: specialties, provider types,
// supervision levels, regions, and survey variables.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│          engine.Manager             │  One engine per entity kind
//	│   (load, refresh, per-kind access)  │
//	└─────────────────────────────────────┘
//	           ↓ owns
//	┌─────────────────────────────────────┐
//	│          engine.Engine              │  Mapping set, learned set,
//	│  (mutations, derived views, search) │  selection, callbacks
//	└─────────────────────────────────────┘
//	           ↓ persists through
//	┌─────────────────────────────────────┐
//	│          kvstore.Store              │  memory, sqlite, redis,
//	│     (Get / Set / Delete bytes)      │  or NATS JetStream KV
//	└─────────────────────────────────────┘
//
// Labels flow in from a labelsource.Source as full replacement snapshots;
// the mapping and learned sets are the only persisted state, and the
// unmapped/mapped/learned views are recomputed from them on demand.
//
// # Packages
//
//   - mapping: core domain types (Mapping, LearnedSet, Kind, claim policy)
//   - engine: per-kind reconciliation engine and manager
//   - labelsource: upstream boundary supplying raw-label snapshots
//   - kvstore: persistence backends behind a byte-oriented Store interface
//   - natsclient: NATS connection and JetStream KV plumbing
//   - config: file + environment configuration
//   - metric: Prometheus metric registration
//   - errors: classified error handling
//
// # Usage
//
//	cfg, _ := config.Load("surveymap.json")
//	store, closeStore, _ := surveymap.OpenStore(ctx, cfg, logger)
//	defer closeStore()
//
//	source := labelsource.NewStatic()
//	mgr, _ := engine.NewManager(nil, store, source, logger, metric.NewRegistry())
//	mgr.LoadAll(ctx)
//	mgr.RefreshAll(ctx)
//
//	eng, _ := mgr.Engine(mapping.KindSpecialty)
//	id, _ := eng.CreateMapping(ctx, "Cardiology", eng.SelectedEntries())
package surveymap
