package state

// ShareableID is set on Trip once the (out-of-core) export layer has
// published a plan; the orchestration core only threads the id back into
// state, per spec §1's scope note that the export layer's PDF/HTML/QR
// rendering is out of scope. Nothing in this module generates it.
type ShareableID = string
