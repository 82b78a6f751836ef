/*
Package gconf provides a toolset for managing module configurations.

Each module can declare its own configuration singleton. The configuration
is stored in the database and can be updated at runtime by the contract
owner, using the generic update handler. The owner itself is set once at
initialization and cannot be rotated.
*/
package gconf
