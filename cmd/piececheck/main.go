// Checks a torrent's data on disk against its piece hashes, allocating any
// missing files, and optionally persists the result so the next run skips
// pieces that already verified good.
package main

import (
	"fmt"
	"log"

	_ "github.com/anacrolix/envpprof"
	"github.com/anacrolix/tagflag"
	"github.com/dustin/go-humanize"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/anacrolix/piececheck"
	"github.com/anacrolix/piececheck/diskfs"
)

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)
	var args struct {
		StateDb string `help:"bolt db that carries checker state between runs"`
		Pieces  bool   `help:"print a verdict line for every piece"`
		tagflag.StartPos
		Torrent string
		DataDir string
	}
	tagflag.Parse(&args, tagflag.Description("Verifies the data for TORRENT under DATADIR."))

	mi, err := metainfo.LoadFromFile(args.Torrent)
	if err != nil {
		log.Fatalf("error loading torrent file: %s", err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		log.Fatalf("error unmarshalling info: %s", err)
	}
	infoHash := mi.HashInfoBytes()
	fsys := diskfs.Native(args.DataDir)

	var stateDb *piececheck.StateDB
	if args.StateDb != "" {
		stateDb, err = piececheck.OpenStateDB(args.StateDb)
		if err != nil {
			log.Fatalf("error opening state db: %s", err)
		}
		defer stateDb.Close()
	}

	checker, err := newChecker(fsys, &info, infoHash, stateDb)
	if err != nil {
		log.Fatalf("error preparing checker: %s", err)
	}
	state, err := checker.Run()
	if err != nil {
		log.Fatalf("error verifying pieces: %s", err)
	}

	var good, bad int
	state.DrainVerdicts(func(v piececheck.Verdict) {
		if v.Good {
			good++
		} else {
			bad++
		}
		if args.Pieces {
			fmt.Println(v.Index, v.Good)
		}
	})

	if stateDb != nil {
		if err := stateDb.Put(infoHash, state); err != nil {
			log.Fatalf("error saving state: %s", err)
		}
	}

	confirmed := state.GoodBitmap().GetCardinality()
	fmt.Printf("%v: %v/%v pieces good (%v bad this run, %v verified)\n",
		info.BestName(),
		confirmed,
		info.NumPieces(),
		bad,
		humanize.Bytes(uint64(confirmed)*uint64(info.PieceLength)))
}

func newChecker(fsys diskfs.FileSystem, info *metainfo.Info, infoHash metainfo.Hash, stateDb *piececheck.StateDB) (*piececheck.Checker, error) {
	if stateDb != nil {
		stored, err := stateDb.Get(infoHash)
		if err != nil {
			return nil, err
		}
		if stored.Ok {
			return piececheck.ResumeChecker(fsys, info, stored.Value), nil
		}
	}
	return piececheck.NewChecker(fsys, info)
}
