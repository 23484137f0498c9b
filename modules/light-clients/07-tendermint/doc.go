/*
Package tendermint implements a concrete ClientState, ConsensusState,
Header, Misbehaviour and types for the Tendermint consensus light client.
This implementation is based off the ICS 07 specification
(https://github.com/cosmos/ibc/tree/main/spec/client/ics-007-tendermint-client)

The client reads and writes its trusted state exclusively through the
validation and execution contexts defined in the exported package.
*/
package tendermint
