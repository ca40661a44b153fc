// Command animelist-etl extracts the Jikan seasonal anime catalog, cleans it
// and replaces a relational snapshot table with the result.
//
//	animelist-etl run                     # extract, transform and load in one process
//	animelist-etl extract                 # single task, publishes to the Redis exchange
//	animelist-etl transform --run-id ID
//	animelist-etl load --run-id ID
//	animelist-etl config                  # print the effective configuration
package main
