// Package migrate rewrites labels from older schema generations into the
// current one.
//
// Three generations are told apart by structure alone. The oldest labels
// are flat: no sub-objects, a FILE_TYPE keyword naming the data object and
// its layout keywords mixed into the file header. Intermediate labels open
// with an SFDU wrapper keyword. Everything else is current.
//
//	out, rep, err := migrate.Migrate(tree)
//	for _, c := range rep.Changes {
//		fmt.Println(c)
//	}
//
// Migration only touches the label; data bytes are never read.
package migrate
