/*
Package app wires message routing, the decorator stack and atomic
execution into a runnable custody application.

A message travels through ChainDecorators (validation, recovery, the
attached-value contract) into the Router, which dispatches on the message
path. CustodyApp runs every delivery inside a cache wrap so a transition
either commits fully or not at all, and drains the payout queue only after
a successful commit.
*/
package app
