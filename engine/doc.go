// Package engine implements the mapping reconciliation engine for survey
// data labels. For each entity kind (specialty, provider type, supervision
// level, region, variable) an Engine classifies the raw labels observed in
// uploaded surveys into three derived views:
//
//   - unmapped: labels no mapping claims and no learned entry covers
//   - mapped: explicit mappings grouping labels under a standardized name
//   - learned: provisional raw-label corrections awaiting promotion
//
// The mapping and learned sets are the authoritative state, persisted
// through a kvstore.Store; the views are recomputed from them and the
// current label snapshot on demand. A label leaves the unmapped view the
// moment a mapping claims its (raw label, survey source) pair or a learned
// entry records its raw label, and reverts as soon as that claim goes away.
//
// A Manager builds one Engine per kind over a shared store and label
// source. Engines mutate in memory first and then persist, so a transient
// persistence failure leaves the session usable; see Engine for the exact
// error contract.
package engine
