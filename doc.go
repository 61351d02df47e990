// Package pennywise provides the types shared by the PennyWise client: the
// backend's REST contract, the session modes, the cash-book directions, the
// chart payload attached to assistant messages, money formatting and the
// error taxonomy.
//
// The client aggregates four independently updating sources into a single
// session:
//   - the conversational assistant and the document-ingestion pipeline,
//     merged into one ordered timeline (package timeline),
//   - the cash ledger, kept as a read-through cache of the server balance
//     (package ledger),
//   - the live market feed, polled and kept coherent with the selected
//     ticker (package market),
//   - the "Glass Box" audit trail of every exchange (package glassbox).
//
// Every backend call goes through package gateway, and package session wires
// the components together. The balance, the ledger arithmetic and the
// privacy masking all belong to the backend: this module never recomputes
// what the server reports.
package pennywise
