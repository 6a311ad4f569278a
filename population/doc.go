// Package population reads and writes the YAML population files consumed by
// the matchctl command.
//
// A population file lists profiles, each optionally carrying its preference
// criteria:
//
//	profiles:
//	  - id: m1
//	    gender: male
//	    age: 27
//	    community: lithuanian
//	    religiosity: strict
//	    location: {place: jerusalem}
//	    description: Learns in kollel mornings, teaches in the evening.
//	    criteria:
//	      min_age: 21
//	      max_age: 26
//	      max_distance_km: 60
//	      free_text: Warm, family oriented, values learning.
//
// Enum fields accept the names produced by the core String methods.
package population
