package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joripage/matching-engine/pkg/matching"
)

const (
	numOrders = 1_000_000
	minPrice  = 10000
	maxPrice  = 20000
	minQty    = 1
	maxQty    = 100

	orderFile = "order.json"
)

type orderRecord struct {
	Type  matching.OrderType `json:"type"`
	Side  matching.Side      `json:"side"`
	Price int64              `json:"price"`
	Qty   int64              `json:"qty"`
}

func randomRecord() orderRecord {
	side := matching.BUY
	if rand.Intn(2) == 0 {
		side = matching.SELL
	}
	return orderRecord{
		Type:  matching.GoodTilCancel,
		Side:  side,
		Price: int64(rand.Intn(maxPrice-minPrice+1) + minPrice),
		Qty:   int64(rand.Intn(maxQty-minQty+1) + minQty),
	}
}

func main() {
	records := make([]orderRecord, 0, numOrders)
	for i := 0; i < numOrders; i++ {
		records = append(records, randomRecord())
	}

	start := time.Now()
	data, err := json.Marshal(records)
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(orderFile, data, 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("write %s: %s\n", orderFile, time.Since(start))

	start = time.Now()
	data, err = os.ReadFile(orderFile)
	if err != nil {
		panic(err)
	}
	var loaded []orderRecord
	if err := json.Unmarshal(data, &loaded); err != nil {
		panic(err)
	}
	fmt.Printf("read %s: %s\n", orderFile, time.Since(start))

	book := matching.NewOrderBook()

	totalMatched := 0
	totalQty := int64(0)
	book.RegisterMatchCallback(func(r matching.MatchResult) {
		totalMatched++
		totalQty += r.Qty
		if totalMatched <= 5 {
			fmt.Printf("match: BUY[%s] <=> SELL[%s] @ %d qty %d\n",
				r.BuyOrderID, r.SellOrderID, r.Price, r.Qty)
		}
	})

	start = time.Now()
	for _, rec := range loaded {
		book.PlaceOrder(book.NewOrder(rec.Type, rec.Side, rec.Price, rec.Qty))
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("total orders     : %d\n", numOrders)
	fmt.Printf("total matches    : %d\n", totalMatched)
	fmt.Printf("total matched qty: %d\n", totalQty)
	fmt.Printf("time taken       : %s\n", elapsed)
	fmt.Printf("avg per order    : %s\n", elapsed/numOrders)
	fmt.Printf("resting bid levels %d, ask levels %d\n", len(book.BidLevels()), len(book.AskLevels()))
}
