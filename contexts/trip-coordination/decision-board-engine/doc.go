// Package decisionboardengine implements the Decision Board Engine inside the
// trip-coordination context.
//
// The module owns the group-decision lifecycle for itinerary options: board
// creation and phase transitions, the append-only vote ledger, weighted
// consensus evaluation, deadline settlement, and realtime fan-out of board
// events. Business rules live in the application/domain layers; persistence,
// transport and messaging sit behind ports and adapters.
package decisionboardengine
