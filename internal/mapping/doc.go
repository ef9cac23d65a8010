// Package mapping defines the YAML mapping profile: its schema, parsing
// and validation against a type graph.
//
// A profile declares type pair registrations the way code would: members
// mapped from source paths, constant values, ignored members, and pairs
// based on an earlier pair whose types they embed.
//
// # Schema Overview
//
//	version: "1"
//	case_sensitive: false
//	mappings:
//	  - source: store.Entity
//	    target: warehouse.Record
//	  - source: store.Order
//	    target: warehouse.Order
//	    base_on:
//	      source: store.Entity
//	      target: warehouse.Record
//	    flatten: true
//	    members:
//	      Number: OrderNumber
//	      CustomerEmail: Customer.Email
//	    values:
//	      Source: webshop
//	    ignore: [Notes]
//
// Members and values keep their file order. When a member is named by more
// than one of members, values and ignore, the later section wins and a
// warning is reported.
//
// # Path Syntax
//
// Source paths are dotted member names: "Name" or "Customer.Address.City".
// Promoted members of embedded structs can be named directly. Element
// paths such as "Items[].Name" are rejected; collections map element-wise.
//
// # Versions
//
// The version is a semantic version checked against SupportedVersions.
// A missing version means DefaultVersion.
package mapping
