// Package config loads keypad layouts from a directory of JSON or HCL files.
//
// A JSON layout file looks like:
//
//	{
//	  "name": "phone",
//	  "description": "Telephone keypad",
//	  "layout": ["123", "456", "789", "*0#"],
//	  "start": "5"
//	}
//
// and the same layout in HCL:
//
//	keypad "phone" {
//	  description = "Telephone keypad"
//	  layout      = ["123", "456", "789", "*0#"]
//	  start       = "5"
//	}
//
// When both name.json and name.hcl exist the JSON file wins. The built-in
// "standard" and "diamond" layouts are always available and can be
// overridden by a file of the same name. SaveKeypad always writes JSON.
package config
