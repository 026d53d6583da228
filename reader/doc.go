// Package reader assembles one or more Apache Parquet files into a
// single logical row sequence and provides projected, low-overhead
// access to it.
//
// The two building blocks are Chain and Cursor. A Chain resolves an
// input path, directory, or glob to an ordered list of parquet files
// sharing one schema:
//
//	chain, err := reader.Open("data/*.parquet", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer chain.Close()
//
//	fmt.Println(chain.NumRows(), chain.ColumnNames())
//
// A Cursor streams over the chain, reading only the columns it is
// asked for:
//
//	cur := reader.NewCursor(chain, []string{"energy"}, chain.ColumnNames())
//	defer cur.Close()
//
//	for i := int64(0); i < chain.NumRows(); i++ {
//	    if _, err := cur.SeekTo(i); err != nil {
//	        log.Fatal(err)
//	    }
//	    probe, err := cur.Probe() // only the "energy" column
//	    ...
//	}
//
// The package uses github.com/parquet-go/parquet-go for the underlying
// parquet file operations.
package reader
