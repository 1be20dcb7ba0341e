// Package stripedset provides a concurrent hash set with lock striping and
// online resizing. The crawler uses it as the visited set so that every
// URL is claimed by exactly one worker.
//
// # Striping
//
// The set owns a fixed array of mutexes (stripes) sized to the initial
// capacity. The bucket table starts at the same size and only ever doubles,
// so after growth several buckets share one stripe:
//
//	stripe(k) = hash(k) % len(locks)    // fixed
//	bucket(k) = hash(k) % len(buckets)  // grows
//
// Because len(buckets) is always len(locks) * 2^n, every key in a bucket
// maps to the same stripe, and holding that stripe is enough to read or
// mutate the bucket.
//
// # Resizing
//
// Add checks the load factor (size > 4 * buckets) after releasing its
// stripe. The check is approximate and may race other Adds. A resize takes
// every stripe in ascending index order, which is the only multi-lock path
// in the package, so lock ordering cannot deadlock. If the table already
// grew while the resizer was waiting, it releases every stripe and returns
// without touching the table.
package stripedset
