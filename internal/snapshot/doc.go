// Package snapshot is an offline host: a model provider backed by a YAML
// model snapshot.
//
// A snapshot lists the project-info parameters, collections, sheets,
// model-defined setups and placed viewports:
//
//	project:
//	  params:
//	    - {name: Client, legacy_type: Text, value: {text: ACME}}
//	collections:
//	  - id: c1
//	    name: Floors
//	    params:
//	      - {name: Export, legacy_type: YesNo, value: {int: 1}}
//	sheets:
//	  - {id: s1, number: A101, name: Plan, collection: c1}
//	pdf_setups:
//	  - {name: A3 Color, source: pdf-export-settings}
//
// The export primitives write stub files named export-0001.pdf,
// export-0002.dwg, ... into the requested directory, like a real host
// writing into a temp folder. Failures can be injected per operation for
// tests. Watch reloads the snapshot when its file changes.
package snapshot
