package warehouse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archetype-io/warehouse"
)

type scenI32 int32
type scenBool bool
type scenStr string
type scenU64 uint64
type scenA struct{ Tag int }
type scenB struct{ Tag int }
type scenC struct{ Tag int }

var _ = Describe("Scenario S1: mixed mutation driven by a sibling column", func() {
	It("doubles i32 only for the entity whose bool flag is true", func() {
		w := warehouse.NewWorld()
		e1, err := w.Spawn(warehouse.NewBundle3(scenI32(123), scenBool(true), scenStr("abc")))
		Expect(err).NotTo(HaveOccurred())
		e2, err := w.Spawn(warehouse.NewBundle2(scenI32(42), scenBool(false)))
		Expect(err).NotTo(HaveOccurred())

		it := warehouse.QueryMut(w, warehouse.And2(warehouse.Mut[scenI32](), warehouse.Ref[scenBool]()))
		for it.Next() {
			pair := it.Item()
			if *pair.Second {
				*pair.First *= 2
			}
		}
		it.Close()

		got1, err := warehouse.Get[scenI32](w.Ref(e1))
		Expect(err).NotTo(HaveOccurred())
		Expect(*got1).To(Equal(scenI32(246)))

		got2, err := warehouse.Get[scenI32](w.Ref(e2))
		Expect(err).NotTo(HaveOccurred())
		Expect(*got2).To(Equal(scenI32(42)))
	})
})

var _ = Describe("Scenario S2: insert then remove changes the archetype signature", func() {
	It("drops A's value from a live entity once A is removed", func() {
		w := warehouse.NewWorld()
		e, err := w.Spawn(warehouse.NewBundle1(scenA{}))
		Expect(err).NotTo(HaveOccurred())

		Expect(w.Insert(e, warehouse.NewBundle1(scenB{}))).To(Succeed())

		aID := warehouse.NewComponentType[scenA]().ID()
		Expect(w.Remove(e, aID)).To(Succeed())

		ids, err := w.Ref(e).ComponentIDs()
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(ConsistOf(warehouse.NewComponentType[scenB]().ID()))

		_, err = warehouse.Get[scenA](w.Ref(e))
		Expect(err).To(BeAssignableToTypeOf(warehouse.MissingComponent{}))
	})
})

var _ = Describe("Scenario S3: despawning alternating entities out of a large population", func() {
	It("halves len() and the surviving query yields exactly the remainder", func() {
		w := warehouse.NewWorld()
		ents := make([]warehouse.Entity, 1000)
		for i := range ents {
			ent, err := w.Spawn(warehouse.NewBundle2(scenI32(i), scenU64(i)))
			Expect(err).NotTo(HaveOccurred())
			ents[i] = ent
		}
		for i, ent := range ents {
			if i%2 == 0 {
				Expect(w.Despawn(ent)).To(Succeed())
			}
		}

		Expect(w.Len()).To(Equal(500))

		it, err := warehouse.Query(w, warehouse.Ref[scenI32]())
		Expect(err).NotTo(HaveOccurred())
		count := 0
		for it.Next() {
			count++
		}
		it.Close()
		Expect(count).To(Equal(500))
	})
})

var _ = Describe("Scenario S4: concurrent queries with disjoint and overlapping access", func() {
	It("lets (A,B) and (B,C) coexist but rejects a third (&mut B,) while either is open", func() {
		w := warehouse.NewWorld()
		_, err := w.Spawn(warehouse.NewBundle3(scenA{}, scenB{}, scenC{}))
		Expect(err).NotTo(HaveOccurred())

		itAB, err := warehouse.Query(w, warehouse.And2(warehouse.Ref[scenA](), warehouse.Ref[scenB]()))
		Expect(err).NotTo(HaveOccurred())
		defer itAB.Close()

		itBC, err := warehouse.Query(w, warehouse.And2(warehouse.Ref[scenB](), warehouse.Ref[scenC]()))
		Expect(err).NotTo(HaveOccurred())
		defer itBC.Close()

		_, err = warehouse.Query(w, warehouse.Mut[scenB]())
		Expect(err).To(BeAssignableToTypeOf(warehouse.ComponentBorrowConflict{}))
	})
})

var _ = Describe("Scenario S5: a CommandBuffer replays spawns and a despawn of an outside entity", func() {
	It("leaves exactly the two newly spawned entities, in archetypes {A} and {A,B}", func() {
		w := warehouse.NewWorld()
		ePrev, err := w.Spawn(warehouse.NewBundle1(scenC{}))
		Expect(err).NotTo(HaveOccurred())

		cb := warehouse.NewCommandBuffer()
		cb.Spawn(warehouse.NewBundle1(scenA{}))
		cb.Spawn(warehouse.NewBundle2(scenA{}, scenB{}))
		cb.Despawn(ePrev)

		Expect(cb.RunOnStrict(w)).To(Succeed())

		Expect(w.Len()).To(Equal(2))

		aID := warehouse.NewComponentType[scenA]().ID()
		bID := warehouse.NewComponentType[scenB]().ID()
		var sawA, sawAB bool
		for _, av := range w.Archetypes() {
			switch {
			case av.Len() == 0:
				continue
			case len(av.ComponentIDs()) == 1 && av.ComponentIDs()[0] == aID:
				sawA = true
			case len(av.ComponentIDs()) == 2 && av.ComponentIDs()[0] == aID && av.ComponentIDs()[1] == bID:
				sawAB = true
			}
		}
		Expect(sawA).To(BeTrue())
		Expect(sawAB).To(BeTrue())
	})
})

var _ = Describe("Scenario S6: spawn_at into an empty world reserves its exact id", func() {
	It("registers the forced id/generation and keeps later spawns away from it", func() {
		w := warehouse.NewWorld()
		forced := warehouse.EntityFromBits(uint64(3)<<32 | uint64(7))
		Expect(forced.ID()).To(Equal(uint32(7)))
		Expect(forced.Generation()).To(Equal(uint32(3)))

		Expect(w.SpawnAt(forced, warehouse.NewBundle1(scenA{}))).To(Succeed())

		found, ok := w.FindEntityFromID(7)
		Expect(ok).To(BeTrue())
		Expect(found.Generation()).To(Equal(uint32(3)))

		other, err := w.Spawn(warehouse.NewBundle1(scenA{}))
		Expect(err).NotTo(HaveOccurred())
		Expect(other.ID()).NotTo(Equal(uint32(7)))
	})
})
